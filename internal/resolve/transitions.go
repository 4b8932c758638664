package resolve

import "github.com/renwave/tashare/internal/model"

// DetectTransitions walks an ordered timeline and reports every point
// where the resolved agent differs from the previous resolved agent.
// UNKNOWN states are skipped entirely: an extraction miss neither starts
// nor interrupts a streak, so it cannot fabricate a transition. Fewer
// than two non-UNKNOWN states yields no transitions.
func DetectTransitions(states []model.ResolvedState) []model.Transition {
	var transitions []model.Transition

	known := ""
	for _, s := range states {
		if s.Agent == model.UnknownAgent {
			continue
		}
		if known == "" {
			known = s.Agent
			continue
		}
		if s.Agent != known {
			transitions = append(transitions, model.Transition{
				SubjectID: s.SubjectID,
				FromAgent: known,
				ToAgent:   s.Agent,
				Date:      s.Date,
			})
			known = s.Agent
		}
	}

	return transitions
}
