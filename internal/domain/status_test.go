package domain

import "testing"

func TestPhase_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseBrowsing, PhaseCollectingDetails, true},
		{PhaseBrowsing, PhaseSubmitting, false},
		{PhaseCollectingDetails, PhaseSubmitting, true},
		{PhaseCollectingDetails, PhaseBrowsing, true},
		{PhaseSubmitting, PhaseSucceeded, true},
		{PhaseSubmitting, PhaseFailed, true},
		{PhaseSubmitting, PhaseBrowsing, false},
		{PhaseSucceeded, PhaseBrowsing, true},
		{PhaseSucceeded, PhaseCollectingDetails, false},
		{PhaseFailed, PhaseCollectingDetails, true},
		{PhaseFailed, PhaseSubmitting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo = %v, want %v", got, tt.want)
			}
		})
	}
}
