package resolve

import (
	"testing"

	"github.com/renwave/tashare/internal/model"
)

func TestDetectTransitions_SkipsUnknown(t *testing.T) {
	// Effective non-UNKNOWN sequence is A, B, A: exactly two transitions
	timeline := []model.ResolvedState{
		state("X", "A", "2019-01-01", 0),
		state("X", "A", "2020-01-01", 1),
		state("X", model.UnknownAgent, "2021-01-01", 2),
		state("X", "B", "2022-01-01", 3),
		state("X", "B", "2023-01-01", 4),
		state("X", "A", "2024-01-01", 5),
	}

	transitions := DetectTransitions(timeline)
	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d: %+v", len(transitions), transitions)
	}

	if transitions[0].FromAgent != "A" || transitions[0].ToAgent != "B" {
		t.Errorf("first transition = %+v, want A->B", transitions[0])
	}
	if !transitions[0].Date.Equal(day("2022-01-01")) {
		t.Errorf("transition dated %v, want date of the new state", transitions[0].Date)
	}
	if transitions[1].FromAgent != "B" || transitions[1].ToAgent != "A" {
		t.Errorf("second transition = %+v, want B->A", transitions[1])
	}
}

func TestDetectTransitions_NoChange(t *testing.T) {
	timeline := []model.ResolvedState{
		state("X", "A", "2020-01-01", 0),
		state("X", "A", "2021-01-01", 1),
	}
	if got := DetectTransitions(timeline); len(got) != 0 {
		t.Errorf("expected no transitions, got %+v", got)
	}
}

func TestDetectTransitions_TooFewKnownStates(t *testing.T) {
	cases := map[string][]model.ResolvedState{
		"empty":         nil,
		"single":        {state("X", "A", "2020-01-01", 0)},
		"only-unknown":  {state("X", model.UnknownAgent, "2020-01-01", 0), state("X", model.UnknownAgent, "2021-01-01", 1)},
		"one-known":     {state("X", model.UnknownAgent, "2020-01-01", 0), state("X", "A", "2021-01-01", 1)},
	}

	for name, timeline := range cases {
		t.Run(name, func(t *testing.T) {
			if got := DetectTransitions(timeline); len(got) != 0 {
				t.Errorf("expected no transitions, got %+v", got)
			}
		})
	}
}

func TestDetectTransitions_UnknownDoesNotInterruptStreak(t *testing.T) {
	// A, UNKNOWN, A must not report a change
	timeline := []model.ResolvedState{
		state("X", "A", "2020-01-01", 0),
		state("X", model.UnknownAgent, "2021-01-01", 1),
		state("X", "A", "2022-01-01", 2),
	}
	if got := DetectTransitions(timeline); len(got) != 0 {
		t.Errorf("UNKNOWN gap fabricated a transition: %+v", got)
	}
}
