package model

import "time"

// ResolvedState is one point-in-time determination of a subject's agent.
// A subject's states form a timeline sorted by date ascending; the last
// element is the current state.
type ResolvedState struct {
	SubjectID string    `json:"subject_id"`
	Agent     string    `json:"agent"` // canonical name, brand, or UnknownAgent
	Score     float64   `json:"score"` // similarity score 0-100; 100 for rule-based labels
	Date      time.Time `json:"date"`
	SourceRef string    `json:"source_ref"`
	Seq       int       `json:"-"` // ingestion order of the backing evidence row
}

// Transition is a detected change between two temporally adjacent
// resolved states with different agents. Transitions are derived from a
// timeline, never stored independently of it.
type Transition struct {
	SubjectID string    `json:"subject_id"`
	FromAgent string    `json:"from_agent"`
	ToAgent   string    `json:"to_agent"`
	Date      time.Time `json:"date"` // date of the new state
}

// CurrentState pairs a subject with the label used for market-share
// aggregation (brand or canonical agent, depending on the report).
type CurrentState struct {
	SubjectID string `json:"subject_id"`
	Label     string `json:"label"`
}
