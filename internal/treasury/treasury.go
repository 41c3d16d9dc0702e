// Package treasury is the platform's asset custody store: per-account,
// per-asset balances in Postgres. It implements the funding.AssetTransfer
// collaborator, so every ledger settlement ultimately lands here.
package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransfer   = errors.New("invalid transfer")
)

type Treasury struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(pool *pgxpool.Pool, log *zap.Logger) *Treasury {
	return &Treasury{pool: pool, log: log}
}

// Transfer moves amount of asset between accounts in one transaction.
// Either the full debit and credit land together or nothing does; a failure
// means no funds moved.
func (t *Treasury) Transfer(ctx context.Context, asset, from, to uuid.UUID, amount uint64) error {
	if asset == uuid.Nil || from == uuid.Nil || to == uuid.Nil || amount == 0 {
		return ErrInvalidTransfer
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE asset_balances SET balance = balance - $1, updated_at = now()
		WHERE account_id = $2 AND asset_id = $3 AND balance >= $1
	`, amount, from, asset)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s, asset %s", ErrInsufficientFunds, from, asset)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO asset_balances (account_id, asset_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, asset_id) DO UPDATE
		SET balance = asset_balances.balance + EXCLUDED.balance, updated_at = now()
	`, to, asset, amount)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	t.log.Debug("transfer completed",
		zap.String("asset", asset.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Uint64("amount", amount),
	)
	return nil
}

// Mint credits amount of asset to an account out of thin air. Dev/test
// networks only; gated by config at the handler level.
func (t *Treasury) Mint(ctx context.Context, account, asset uuid.UUID, amount uint64) error {
	if account == uuid.Nil || asset == uuid.Nil || amount == 0 {
		return ErrInvalidTransfer
	}
	_, err := t.pool.Exec(ctx, `
		INSERT INTO asset_balances (account_id, asset_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, asset_id) DO UPDATE
		SET balance = asset_balances.balance + EXCLUDED.balance, updated_at = now()
	`, account, asset, amount)
	return err
}

// Balance returns an account's holding of one asset; zero for accounts the
// treasury has never seen.
func (t *Treasury) Balance(ctx context.Context, account, asset uuid.UUID) (uint64, error) {
	var balance uint64
	err := t.pool.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT balance FROM asset_balances WHERE account_id = $1 AND asset_id = $2), 0)
	`, account, asset).Scan(&balance)
	return balance, err
}
