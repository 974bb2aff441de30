package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/storefront/internal/db"
)

// locked runs fn while holding the advisory lock for key. The lock is
// transaction scoped, so it is released on commit or rollback.
func (s *postgresStore) locked(ctx context.Context, key string, fn func(q *db.Queries) error) (txErr error) {
	run := func(q *db.Queries) error {
		if err := q.LockSlot(ctx, key); err != nil {
			return fmt.Errorf("q.LockSlot: %w", err)
		}
		return fn(q)
	}

	// caller owns the transaction
	if s.pool == nil {
		return run(s.q)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}

	defer func() {
		if txErr == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rbErr))
		}
	}()

	if err := run(s.q.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}
