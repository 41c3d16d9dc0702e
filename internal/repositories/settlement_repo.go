package repositories

import (
	"context"

	"github.com/fundflow/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettlementRepo struct {
	pool *pgxpool.Pool
}

func NewSettlementRepo(pool *pgxpool.Pool) *SettlementRepo {
	return &SettlementRepo{pool: pool}
}

func (r *SettlementRepo) Create(ctx context.Context, s *models.Settlement) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO settlements (ledger_id, type, recipient, asset, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, s.LedgerID, s.Type, s.Recipient, s.Asset, s.Amount).Scan(&s.ID, &s.CreatedAt)
}

func (r *SettlementRepo) ListByLedger(ctx context.Context, ledgerID uuid.UUID) ([]models.Settlement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ledger_id, type, recipient, asset, amount, created_at
		FROM settlements WHERE ledger_id = $1
		ORDER BY created_at
	`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var s models.Settlement
		if err := rows.Scan(&s.ID, &s.LedgerID, &s.Type, &s.Recipient, &s.Asset, &s.Amount, &s.CreatedAt); err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	return settlements, nil
}
