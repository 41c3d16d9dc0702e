package models

import "testing"

func TestIsValidProposalTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Review outcomes
		{ProposalStatusPending, ProposalStatusAccepted, true},
		{ProposalStatusPending, ProposalStatusRejected, true},

		// Review is write-once
		{ProposalStatusAccepted, ProposalStatusRejected, false},
		{ProposalStatusAccepted, ProposalStatusPending, false},
		{ProposalStatusRejected, ProposalStatusAccepted, false},
		{ProposalStatusRejected, ProposalStatusPending, false},
		{ProposalStatusAccepted, ProposalStatusAccepted, false},
		{ProposalStatusRejected, ProposalStatusRejected, false},

		// Unknown statuses
		{"nonexistent", ProposalStatusAccepted, false},
		{ProposalStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidProposalTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidProposalTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalProposalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{ProposalStatusAccepted, ProposalStatusRejected}
	for _, status := range terminal {
		transitions := ValidProposalTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}
