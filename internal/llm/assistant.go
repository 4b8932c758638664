package llm

import (
	"context"
	"fmt"

	"github.com/renwave/tashare/internal/model"
)

// Assistant wraps an optional provider behind a nil-safe API. A disabled
// assistant is valid and drafts nothing.
type Assistant struct {
	provider Provider
	config   Config
}

// NewAssistant creates an assistant from the run configuration. An empty
// provider name yields a disabled assistant, not an error.
func NewAssistant(cfg Config) (*Assistant, error) {
	if cfg.Provider == "" {
		return &Assistant{config: cfg}, nil
	}
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &Assistant{provider: p, config: cfg}, nil
}

// IsEnabled reports whether drafting will do anything
func (a *Assistant) IsEnabled() bool {
	return a != nil && a.provider != nil
}

// Draft produces suggestion text for the review list. Failures here must
// never fail the run that produced the review list; callers log and move
// on.
func (a *Assistant) Draft(ctx context.Context, entries []model.ReviewEntry, canonical []string) (string, error) {
	if !a.IsEnabled() {
		return "", nil
	}
	if len(entries) == 0 {
		return "", nil
	}

	resp, err := a.provider.Suggest(ctx, SuggestRequest{
		Entries:   entries,
		Canonical: canonical,
	})
	if err != nil {
		return "", fmt.Errorf("draft review suggestions: %w", err)
	}
	return resp.Draft, nil
}
