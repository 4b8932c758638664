package model

import "time"

// ShareRow is one line of the market-share table
type ShareRow struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`      // distinct subjects currently on this label
	Percentage float64 `json:"percentage"` // of the full total, rounded to 2 decimals
}

// MarketShare is the ranked market-share table. Rows are sorted by count
// descending, ties broken alphabetically by label. Total is the number of
// distinct subjects across all labels, including rows truncated away by
// Top - percentages are always computed against it.
type MarketShare struct {
	Rows  []ShareRow `json:"rows"`
	Total int        `json:"total"`
}

// TimelinePoint is one entry of a subject's published timeline
type TimelinePoint struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Score float64   `json:"score"`
}

// SubjectTimeline is the per-subject output: the ordered resolution
// history for one issuer.
type SubjectTimeline struct {
	SubjectID string          `json:"subject_id"`
	Points    []TimelinePoint `json:"points"`
}

// ReviewEntry is a raw name that failed canonicalization, kept for manual
// curation feedback into the taxonomy.
type ReviewEntry struct {
	SubjectID string `json:"subject_id"`
	RawName   string `json:"raw_name"`
	SourceRef string `json:"source_ref"`
}

// RunSummary aggregates per-row and per-subject problems instead of
// aborting the batch on them.
type RunSummary struct {
	Documents       int `json:"documents"`
	Rows            int `json:"rows"`
	SkippedRows     int `json:"skipped_rows"` // rejected at the boundary (missing id/date)
	Subjects        int `json:"subjects"`
	UnknownMentions int `json:"unknown_mentions"`
	Transitions     int `json:"transitions"`

	// SkippedSamples holds a few example rejection reasons for operators
	SkippedSamples []string `json:"skipped_samples,omitempty"`
}

// RunReport is the complete output of one pipeline run
type RunReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Share       MarketShare       `json:"share"`
	Timelines   []SubjectTimeline `json:"timelines"`
	Transitions []Transition      `json:"transitions"`
	Review      []ReviewEntry     `json:"review,omitempty"`
	Summary     RunSummary        `json:"summary"`
}
