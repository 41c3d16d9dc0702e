package repositories

import (
	"context"
	"fmt"

	"github.com/fundflow/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

func (r *ProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO proposals (id, submitter, min_target, max_target, window_start, window_end, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Submitter, p.MinTarget, p.MaxTarget, p.WindowStart, p.WindowEnd, p.Status, p.CreatedAt)
	return err
}

// UpdateReview persists a review outcome. The status guard mirrors the
// registry's write-once rule.
func (r *ProposalRepo) UpdateReview(ctx context.Context, id uint64, status string, ledgerID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE proposals SET status = $1, ledger_id = $2
		WHERE id = $3 AND status = 'pending'
	`, status, ledgerID, id)
	return err
}

func (r *ProposalRepo) GetByID(ctx context.Context, id uint64) (*models.Proposal, error) {
	var p models.Proposal
	err := r.pool.QueryRow(ctx, `
		SELECT id, submitter, min_target, max_target, window_start, window_end, status, ledger_id, created_at
		FROM proposals WHERE id = $1
	`, id).Scan(&p.ID, &p.Submitter, &p.MinTarget, &p.MaxTarget,
		&p.WindowStart, &p.WindowEnd, &p.Status, &p.LedgerID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type ProposalFilter struct {
	Submitter *uuid.UUID
	Status    *string
	Limit     int
	Offset    int
}

func (r *ProposalRepo) List(ctx context.Context, f ProposalFilter) ([]models.Proposal, error) {
	query := `
		SELECT id, submitter, min_target, max_target, window_start, window_end, status, ledger_id, created_at
		FROM proposals
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Submitter != nil {
		where = append(where, fmt.Sprintf("submitter = $%d", argIdx))
		args = append(args, *f.Submitter)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
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
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.Submitter, &p.MinTarget, &p.MaxTarget,
			&p.WindowStart, &p.WindowEnd, &p.Status, &p.LedgerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

// ListAll returns every proposal in id order, for registry rehydration.
func (r *ProposalRepo) ListAll(ctx context.Context) ([]models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, submitter, min_target, max_target, window_start, window_end, status, ledger_id, created_at
		FROM proposals ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.Submitter, &p.MinTarget, &p.MaxTarget,
			&p.WindowStart, &p.WindowEnd, &p.Status, &p.LedgerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}
