package extract

import (
	"strings"

	"github.com/renwave/tashare/internal/model"
)

// Extractor scans plain filing text for candidate agent mentions. It is a
// pure function of the text and its configuration; absence of matches is
// a normal outcome, never an error.
type Extractor struct {
	strategies  []Strategy
	radius      int
	dedupPrefix int
}

// NewExtractor builds an extractor with the standard strategy order:
// trigger-anchored matches first, bare vocabulary matches last.
func NewExtractor(cfg model.ExtractConfig) *Extractor {
	terms := lowerVocab(cfg.Vocabulary)
	triggers := make([]string, 0, len(cfg.Triggers))
	for _, t := range cfg.Triggers {
		triggers = append(triggers, asciiLower(t))
	}

	return &Extractor{
		strategies: []Strategy{
			&triggerBeforeBrand{terms: terms, triggers: triggers, maxGap: cfg.MaxGap},
			&brandBeforeTrigger{terms: terms, triggers: triggers, maxGap: cfg.MaxGap},
			&directBrand{terms: terms},
		},
		radius:      cfg.ContextRadius,
		dedupPrefix: cfg.DedupPrefix,
	}
}

// Extract runs every strategy over the text, pools the results, and
// deduplicates on (lowercased brand, lowercased context prefix). First
// occurrence wins; insertion order is preserved.
func (e *Extractor) Extract(text string) []model.RawMention {
	if text == "" {
		return nil
	}

	lower := asciiLower(text)

	var mentions []model.RawMention
	seen := make(map[string]bool)

	for _, strategy := range e.strategies {
		for _, sp := range strategy.Find(lower) {
			m := model.RawMention{
				Brand:    sp.brand,
				Context:  e.context(text, sp),
				Strategy: strategy.Name(),
			}
			key := e.dedupKey(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			mentions = append(mentions, m)
		}
	}

	return mentions
}

// context captures a fixed-radius window around the match, collapsed to a
// single line.
func (e *Extractor) context(text string, sp span) string {
	start := sp.start - e.radius
	if start < 0 {
		start = 0
	}
	end := sp.end + e.radius
	if end > len(text) {
		end = len(text)
	}
	ctx := strings.ReplaceAll(text[start:end], "\n", " ")
	ctx = strings.ReplaceAll(ctx, "\r", " ")
	return strings.TrimSpace(ctx)
}

func (e *Extractor) dedupKey(m model.RawMention) string {
	ctx := asciiLower(m.Context)
	if len(ctx) > e.dedupPrefix {
		ctx = ctx[:e.dedupPrefix]
	}
	return asciiLower(m.Brand) + "|" + ctx
}
