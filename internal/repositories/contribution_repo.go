package repositories

import (
	"context"

	"github.com/fundflow/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContributionRepo struct {
	pool *pgxpool.Pool
}

func NewContributionRepo(pool *pgxpool.Pool) *ContributionRepo {
	return &ContributionRepo{pool: pool}
}

func (r *ContributionRepo) Create(ctx context.Context, c *models.Contribution) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO contributions (ledger_id, contributor, source_asset, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.LedgerID, c.Contributor, c.SourceAsset, c.Amount).Scan(&c.ID, &c.CreatedAt)
}

func (r *ContributionRepo) ListByLedger(ctx context.Context, ledgerID uuid.UUID, limit, offset int) ([]models.Contribution, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, ledger_id, contributor, source_asset, amount, created_at
		FROM contributions WHERE ledger_id = $1
		ORDER BY created_at LIMIT $2 OFFSET $3
	`, ledgerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributions []models.Contribution
	for rows.Next() {
		var c models.Contribution
		if err := rows.Scan(&c.ID, &c.LedgerID, &c.Contributor, &c.SourceAsset, &c.Amount, &c.CreatedAt); err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, nil
}

// SumByContributor aggregates accepted contributions per contributor,
// used to replay ledger balances at boot.
func (r *ContributionRepo) SumByContributor(ctx context.Context, ledgerID uuid.UUID) (map[uuid.UUID]uint64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT contributor, COALESCE(SUM(amount), 0)
		FROM contributions WHERE ledger_id = $1
		GROUP BY contributor
	`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[uuid.UUID]uint64)
	for rows.Next() {
		var contributor uuid.UUID
		var sum uint64
		if err := rows.Scan(&contributor, &sum); err != nil {
			return nil, err
		}
		sums[contributor] = sum
	}
	return sums, nil
}
