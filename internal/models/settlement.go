package models

import (
	"time"

	"github.com/google/uuid"
)

// Settlement types
const (
	SettlementTypeClaim  = "claim"
	SettlementTypeRefund = "refund"
)

// Settlement records one resolved unit of collected value: a single claim by
// the creator, or one contributor's refund. Each ledger has at most one claim
// row and at most one refund row per contributor.
type Settlement struct {
	ID        uuid.UUID `json:"id"`
	LedgerID  uuid.UUID `json:"ledger_id"`
	Type      string    `json:"type"`
	Recipient uuid.UUID `json:"recipient"`
	Asset     uuid.UUID `json:"asset"`
	Amount    uint64    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
