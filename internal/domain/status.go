package domain

import "time"

// Phase is the checkout panel state
type Phase string

const (
	PhaseBrowsing          Phase = "browsing"
	PhaseCollectingDetails Phase = "collecting_details"
	PhaseSubmitting        Phase = "submitting"
	PhaseSucceeded         Phase = "succeeded"
	PhaseFailed            Phase = "failed"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseBrowsing:          {PhaseCollectingDetails},
	PhaseCollectingDetails: {PhaseSubmitting, PhaseBrowsing},
	PhaseSubmitting:        {PhaseSucceeded, PhaseFailed},
	PhaseSucceeded:         {PhaseBrowsing},
	PhaseFailed:            {PhaseCollectingDetails},
}

// CanTransitionTo checks the checkout transition table
func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range phaseTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the phase shows a submission result.
func (p Phase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

type DispatchOutcome string

const (
	OutcomeDispatched DispatchOutcome = "dispatched"
	OutcomeFailed     DispatchOutcome = "failed"
)

// Receipt is what the order endpoint tells us about a dispatched request.
// StatusCode is informational only: the endpoint never confirms acceptance.
type Receipt struct {
	StatusCode   int
	DispatchedAt time.Time
}
