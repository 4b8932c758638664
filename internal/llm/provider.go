// Package llm drafts taxonomy suggestions for agent names the
// canonicalizer could not place. The output is advisory text for a human
// curator; it never feeds back into resolution automatically.
package llm

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/renwave/tashare/internal/model"
)

// Provider is an LLM backend capable of drafting review suggestions
type Provider interface {
	// Name returns the provider name
	Name() string

	// Suggest drafts taxonomy placements for the review entries
	Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SuggestRequest is the input for a review draft
type SuggestRequest struct {
	// Entries are the unresolved names, deduplicated per subject
	Entries []model.ReviewEntry

	// Canonical is the CLOSED list of existing canonical agent names.
	// The model may only propose placements within it or flag a name as
	// genuinely new; it cannot invent canonical entries silently.
	Canonical []string

	// Model overrides the configured model when non-empty
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SuggestResponse is the drafted output
type SuggestResponse struct {
	// Draft is the suggestion text, one line per reviewed name
	Draft string

	// Model is the model that produced the draft
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts the run configuration, pulling the API key
// from the environment when it isn't set explicitly.
func ConfigFromModel(cfg model.LLMConfig) Config {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    apiKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   30,
		MaxTokens: cfg.MaxTokens,
	}
}

// NewProvider creates the configured provider
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

// BuildPrompt constructs the default review prompt. The canonical list
// is a strict allowlist: anything outside it must be flagged NEW.
func BuildPrompt(entries []model.ReviewEntry, canonical []string) string {
	names := make([]string, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		key := strings.ToLower(e.RawName)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, e.RawName)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(`You are helping curate a taxonomy of securities transfer agents.

CRITICAL RULES:
1. For each raw name below, either map it to ONE canonical agent from the allowed list, or answer NEW if it matches none.
2. Do NOT invent canonical names outside the allowed list.
3. Answer one line per raw name, formatted: raw name -> canonical name (or NEW).
4. When unsure, answer NEW; a false match is worse than no match.

Allowed canonical agents:
`)
	for _, c := range canonical {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nRaw names needing placement:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	return b.String()
}
