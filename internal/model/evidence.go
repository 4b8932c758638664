package model

import (
	"fmt"
	"strings"
	"time"
)

// UnknownAgent is the sentinel label for a mention that could not be
// matched to the taxonomy above the similarity threshold.
const UnknownAgent = "UNKNOWN"

// DateLayout is the wire format for observation dates (ISO date).
const DateLayout = "2006-01-02"

// EvidenceKind classifies how an evidence row's text field was obtained
type EvidenceKind string

const (
	// EvidenceFreeText marks raw filing text; it is routed through
	// mention extraction and fuzzy canonicalization.
	EvidenceFreeText EvidenceKind = "FREE_TEXT"

	// EvidenceStructuredName marks a clean registrant name from a
	// registry table; it is routed through rule-based brand collapsing.
	EvidenceStructuredName EvidenceKind = "STRUCTURED_NAME"
)

// EvidenceRow is one append-only observation tying a subject to raw agent
// evidence. Rows are never mutated after creation, only superseded in
// ranking by newer evidence.
type EvidenceRow struct {
	SubjectID string       `json:"subject_id"`       // issuer CIK
	Date      time.Time    `json:"date"`             // filing/registration date
	SourceRef string       `json:"source_ref"`       // accession number or file path
	Text      string       `json:"text"`             // filing text or registrant name
	Kind      EvidenceKind `json:"kind"`
	Seq       int          `json:"-"` // ingestion order, breaks date ties
}

// NewEvidenceRow builds a row and enforces the boundary invariants:
// non-empty subject id and a real date. Callers count rejected rows as
// skipped; a rejection is never fatal to the batch.
func NewEvidenceRow(subjectID string, date time.Time, sourceRef, text string, kind EvidenceKind) (EvidenceRow, error) {
	if strings.TrimSpace(subjectID) == "" {
		return EvidenceRow{}, fmt.Errorf("evidence row: missing subject id (source %q)", sourceRef)
	}
	if date.IsZero() {
		return EvidenceRow{}, fmt.Errorf("evidence row for %s: missing observation date", subjectID)
	}
	switch kind {
	case EvidenceFreeText:
	case EvidenceStructuredName:
		// An empty registrant name would flow through brand collapsing
		// into the share table as an empty label.
		if strings.TrimSpace(text) == "" {
			return EvidenceRow{}, fmt.Errorf("evidence row for %s: empty structured name", subjectID)
		}
	default:
		return EvidenceRow{}, fmt.Errorf("evidence row for %s: unknown kind %q", subjectID, kind)
	}
	return EvidenceRow{
		SubjectID: subjectID,
		Date:      date,
		SourceRef: sourceRef,
		Text:      text,
		Kind:      kind,
	}, nil
}

// RawMention is a candidate agent-name match found in filing text
type RawMention struct {
	Brand    string `json:"brand"`    // matched vocabulary term
	Context  string `json:"context"`  // fixed-radius window around the match
	Strategy string `json:"strategy"` // which pattern strategy produced it
}
