package models

import (
	"time"

	"github.com/google/uuid"
)

// Contribution is the persisted record of one accepted contribute call.
// The authoritative per-contributor balance lives in the ledger; rows here
// are the append-only history behind it.
type Contribution struct {
	ID          uuid.UUID `json:"id"`
	LedgerID    uuid.UUID `json:"ledger_id"`
	Contributor uuid.UUID `json:"contributor"`
	SourceAsset uuid.UUID `json:"source_asset"`
	Amount      uint64    `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}
