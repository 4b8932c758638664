// Package resolve turns one subject's labeled evidence into an ordered
// timeline, a current state, and the transitions between agents.
package resolve

import (
	"errors"
	"sort"

	"github.com/renwave/tashare/internal/model"
)

// ErrNoEvidence is returned when resolution is attempted for a subject
// with zero evidence rows. Callers are expected to filter such subjects
// out; failing fast here beats fabricating a state.
var ErrNoEvidence = errors.New("no evidence for subject")

// Timeline is a subject's resolution history, sorted by observation date
// ascending. The current state is always the last element of the same
// slice, never recomputed independently, so the two cannot diverge.
type Timeline struct {
	SubjectID string
	States    []model.ResolvedState
}

// Current returns the designated current state: maximum observation date,
// ties broken by the most recently ingested evidence row.
func (t Timeline) Current() model.ResolvedState {
	return t.States[len(t.States)-1]
}

// Resolve orders a subject's resolved states into a timeline. Input
// states must all belong to the same subject; they may arrive in any
// order. Sorting is by date ascending with ingestion sequence as the
// secondary key, which keeps re-runs bit-identical.
func Resolve(states []model.ResolvedState) (Timeline, error) {
	if len(states) == 0 {
		return Timeline{}, ErrNoEvidence
	}

	sorted := make([]model.ResolvedState, len(states))
	copy(sorted, states)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Seq < sorted[j].Seq
	})

	return Timeline{SubjectID: sorted[0].SubjectID, States: sorted}, nil
}
