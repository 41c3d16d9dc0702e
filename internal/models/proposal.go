package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal statuses
const (
	ProposalStatusPending  = "pending"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)

// Valid status transitions: from -> []to. Review is write-once, so both
// outcomes are terminal.
var ValidProposalTransitions = map[string][]string{
	ProposalStatusPending:  {ProposalStatusAccepted, ProposalStatusRejected},
	ProposalStatusAccepted: {},
	ProposalStatusRejected: {},
}

func IsValidProposalTransition(from, to string) bool {
	allowed, ok := ValidProposalTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Proposal is a submitted set of campaign terms awaiting review. IDs are
// sequential and never reused; issuance order equals submission order.
type Proposal struct {
	ID          uint64     `json:"id"`
	Submitter   uuid.UUID  `json:"submitter"`
	MinTarget   uint64     `json:"min_target"`
	MaxTarget   uint64     `json:"max_target"`
	WindowStart time.Time  `json:"window_start"`
	WindowEnd   time.Time  `json:"window_end"`
	Status      string     `json:"status"`
	LedgerID    *uuid.UUID `json:"ledger_id,omitempty"` // set iff accepted
	CreatedAt   time.Time  `json:"created_at"`
}
