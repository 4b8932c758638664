package normalize

import (
	"strings"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/renwave/tashare/internal/model"
)

// candidate is one string the canonicalizer matches against, mapped back
// to its owning canonical name. Pool order is fixed at construction:
// taxonomy file order, canonical name before its variants.
type candidate struct {
	text      string // lowercased form used for matching
	canonical string
}

// Canonicalizer maps raw mention strings to canonical agent identities by
// normalized edit-distance similarity against the taxonomy pool. Safe for
// concurrent use.
type Canonicalizer struct {
	candidates []candidate
	threshold  float64
	lev        *metrics.Levenshtein

	mu      sync.Mutex
	unknown []string
	seen    map[string]bool
}

// NewCanonicalizer builds the candidate pool from the taxonomy
func NewCanonicalizer(tax *Taxonomy, cfg model.NormalizeConfig) *Canonicalizer {
	var pool []candidate
	for _, entry := range tax.Entries() {
		pool = append(pool, candidate{text: strings.ToLower(entry.Canonical), canonical: entry.Canonical})
		for _, v := range entry.Variants {
			pool = append(pool, candidate{text: strings.ToLower(v), canonical: entry.Canonical})
		}
	}

	return &Canonicalizer{
		candidates: pool,
		threshold:  cfg.SimilarityThreshold,
		lev:        metrics.NewLevenshtein(),
		seen:       make(map[string]bool),
	}
}

// Canonicalize returns the owning canonical name of the best-matching
// candidate and its similarity score on a 0-100 scale, or
// (model.UnknownAgent, 0) when the best score falls below the threshold.
// A score exactly at the threshold is accepted. Ties among equal top
// scores resolve to the earliest candidate in pool order, which keeps the
// result identical across runs.
func (c *Canonicalizer) Canonicalize(raw string) (string, float64) {
	cleaned := strings.TrimSpace(raw)
	if len([]rune(cleaned)) < 3 {
		return model.UnknownAgent, 0
	}

	lower := strings.ToLower(cleaned)

	best := -1.0
	bestCanonical := ""
	for _, cand := range c.candidates {
		score := strutil.Similarity(lower, cand.text, c.lev) * 100
		if score > best {
			best = score
			bestCanonical = cand.canonical
		}
	}

	if best >= c.threshold {
		return bestCanonical, best
	}

	c.record(cleaned)
	return model.UnknownAgent, 0
}

// record tracks an unmatched raw name for the review output
func (c *Canonicalizer) record(raw string) {
	key := strings.ToLower(raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.unknown = append(c.unknown, raw)
}

// Unknown returns the raw names that failed canonicalization, deduplicated
// case-insensitively, in first-seen order.
func (c *Canonicalizer) Unknown() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.unknown))
	copy(out, c.unknown)
	return out
}
