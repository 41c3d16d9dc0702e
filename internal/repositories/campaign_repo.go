package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/fundflow/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign, phase string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (ledger_id, proposal_id, creator, min_target, max_target,
		                       window_start, window_end, settlement_asset, total_collected, claimed, phase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.LedgerID, c.ProposalID, c.Creator, c.MinTarget, c.MaxTarget,
		c.WindowStart, c.WindowEnd, c.SettlementAsset, c.TotalCollected, c.Claimed, phase)
	return err
}

// UpdateSnapshot refreshes the persisted read model from a live ledger.
func (r *CampaignRepo) UpdateSnapshot(ctx context.Context, ledgerID uuid.UUID, totalCollected uint64, claimed bool, phase string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET total_collected = $1, claimed = $2, phase = $3, updated_at = now()
		WHERE ledger_id = $4
	`, totalCollected, claimed, phase, ledgerID)
	return err
}

func (r *CampaignRepo) GetByLedgerID(ctx context.Context, ledgerID uuid.UUID) (*models.Campaign, string, error) {
	var c models.Campaign
	var phase string
	err := r.pool.QueryRow(ctx, `
		SELECT ledger_id, proposal_id, creator, min_target, max_target,
		       window_start, window_end, settlement_asset, total_collected, claimed, phase
		FROM campaigns WHERE ledger_id = $1
	`, ledgerID).Scan(&c.LedgerID, &c.ProposalID, &c.Creator, &c.MinTarget, &c.MaxTarget,
		&c.WindowStart, &c.WindowEnd, &c.SettlementAsset, &c.TotalCollected, &c.Claimed, &phase)
	if err != nil {
		return nil, "", err
	}
	deriveFlags(&c, time.Now())
	return &c, phase, nil
}

// deriveFlags recomputes the snapshot booleans the same way a live ledger
// does. Stored rows keep only the raw counters.
func deriveFlags(c *models.Campaign, now time.Time) {
	c.IsActive = !now.Before(c.WindowStart) && !now.After(c.WindowEnd)
	c.IsSuccessful = c.TotalCollected >= c.MinTarget
}

type CampaignFilter struct {
	Creator *uuid.UUID
	Phase   *string
	Limit   int
	Offset  int
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	query := `
		SELECT ledger_id, proposal_id, creator, min_target, max_target,
		       window_start, window_end, settlement_asset, total_collected, claimed, phase
		FROM campaigns
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Creator != nil {
		where = append(where, fmt.Sprintf("creator = $%d", argIdx))
		args = append(args, *f.Creator)
		argIdx++
	}
	if f.Phase != nil {
		where = append(where, fmt.Sprintf("phase = $%d", argIdx))
		args = append(args, *f.Phase)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY window_end LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		var phase string
		if err := rows.Scan(&c.LedgerID, &c.ProposalID, &c.Creator, &c.MinTarget, &c.MaxTarget,
			&c.WindowStart, &c.WindowEnd, &c.SettlementAsset, &c.TotalCollected, &c.Claimed, &phase); err != nil {
			return nil, err
		}
		deriveFlags(&c, time.Now())
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

// ListByPhase returns ledger ids currently persisted under the given phase,
// used by the worker's window-close scan.
func (r *CampaignRepo) ListByPhase(ctx context.Context, phase string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT ledger_id FROM campaigns WHERE phase = $1 ORDER BY window_end LIMIT $2
	`, phase, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
