package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign phases, derived from (now, totalCollected) relative to the frozen
// terms. Persisted snapshots only — the ledger recomputes them on every read.
const (
	CampaignPhaseUpcoming   = "upcoming"
	CampaignPhaseActive     = "active"
	CampaignPhaseSuccessful = "successful"
	CampaignPhaseFailed     = "failed"
)

// Campaign is the read model of a deployed ledger. IsActive and IsSuccessful
// are recomputed from the current clock on every snapshot, never stored by
// the ledger itself.
type Campaign struct {
	LedgerID        uuid.UUID `json:"ledger_id"`
	ProposalID      uint64    `json:"proposal_id"`
	Creator         uuid.UUID `json:"creator"`
	MinTarget       uint64    `json:"min_target"`
	MaxTarget       uint64    `json:"max_target"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
	SettlementAsset uuid.UUID `json:"settlement_asset"`
	TotalCollected  uint64    `json:"total_collected"`
	Claimed         bool      `json:"claimed"`
	IsActive        bool      `json:"is_active"`
	IsSuccessful    bool      `json:"is_successful"`
}

// Phase maps the derived booleans onto the snapshot phase names.
func (c *Campaign) Phase(now time.Time) string {
	switch {
	case now.Before(c.WindowStart):
		return CampaignPhaseUpcoming
	case !now.After(c.WindowEnd):
		return CampaignPhaseActive
	case c.IsSuccessful:
		return CampaignPhaseSuccessful
	default:
		return CampaignPhaseFailed
	}
}
