package model

import "time"

// Config is the explicit, immutable run configuration. Components receive
// the sections they need at construction; nothing reads package-level
// mutable state.
type Config struct {
	Extract     ExtractConfig     `yaml:"extract" json:"extract"`
	Normalize   NormalizeConfig   `yaml:"normalize" json:"normalize"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" json:"rate_limit"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
}

// ExtractConfig drives the mention extractor
type ExtractConfig struct {
	// ContextRadius is the number of characters captured on each side of
	// a match. Source variants used 100-200; 150 is the pinned value.
	ContextRadius int `yaml:"context_radius" json:"context_radius"`

	// DedupPrefix is how many context characters participate in the
	// mention dedup key.
	DedupPrefix int `yaml:"dedup_prefix" json:"dedup_prefix"`

	// MaxGap is the maximum distance between a trigger phrase and a
	// vocabulary term for the anchored strategies.
	MaxGap int `yaml:"max_gap" json:"max_gap"`

	// Vocabulary is the known agent-name strings scanned for
	Vocabulary []string `yaml:"vocabulary" json:"vocabulary"`

	// Triggers are the anchor phrases near which vocabulary matches are
	// considered strongest.
	Triggers []string `yaml:"triggers" json:"triggers"`
}

// NormalizeConfig drives canonicalization and brand collapsing
type NormalizeConfig struct {
	// SimilarityThreshold accepts a fuzzy match at >= this score (0-100).
	// Exactly the threshold is accepted.
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`

	// TaxonomyPath points at the canonical agent reference YAML
	TaxonomyPath string `yaml:"taxonomy_path" json:"taxonomy_path"`
}

// HTTPConfig configures the EDGAR fetcher
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay   time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// CacheConfig configures the fetched-document cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	// Workers handles per-document extraction and per-subject resolution
	Workers int `yaml:"workers" json:"workers"`

	// FetchWorkers handles parallel EDGAR downloads
	FetchWorkers int `yaml:"fetch_workers" json:"fetch_workers"`
}

// RateLimitConfig throttles outbound EDGAR requests. SEC allows 10
// requests per second; the default stays under it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
	TopN    int  `yaml:"top_n" json:"top_n"` // market-share rows printed; 0 = all
}

// LLMConfig configures the optional review-list assistant. It never
// participates in resolution; it only drafts taxonomy suggestions for
// names the canonicalizer could not place.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// DefaultConfig returns the pinned defaults
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			ContextRadius: 150,
			DedupPrefix:   50,
			MaxGap:        200,
			Vocabulary: []string{
				"Computershare",
				"BNY Mellon",
				"Equiniti",
				"State Street",
				"DST",
				"Broadridge",
				"American Stock Transfer",
				"Continental Stock Transfer",
				"VStock Transfer",
				"Issuer Direct",
				"Fidelity",
				"Vanguard",
			},
			Triggers: []string{
				"transfer agent",
				"registrar",
				"stock transfer",
				"trust company",
			},
		},
		Normalize: NormalizeConfig{
			SimilarityThreshold: 80.0,
			TaxonomyPath:        "reference/agents.yaml",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "tashare/0.1 (+https://github.com/renwave/tashare)",
			MaxBodyBytes: 10_000_000,
			MaxRetries:   3,
			RetryDelay:   time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "data/cache",
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			FetchWorkers: 3,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Output: OutputConfig{
			TopN: 10,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			MaxTokens: 500,
		},
	}
}
