package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/port"
)

type postgresStore struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) port.SlotStore {
	return &postgresStore{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewPostgresStoreWithTx(tx pgx.Tx) port.SlotStore {
	return &postgresStore{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (s *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	slot, err := s.q.GetSlot(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("q.GetSlot: %w", err)
	}

	return slot.Value, nil
}

// Put and Delete serialize on the key's advisory lock; the last write wins.
func (s *postgresStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	err := s.locked(ctx, key, func(q *db.Queries) error {
		if err := q.UpsertSlot(ctx, db.UpsertSlotParams{Key: key, Value: value}); err != nil {
			return fmt.Errorf("q.UpsertSlot: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("s.locked: %w", err)
	}

	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	err := s.locked(ctx, key, func(q *db.Queries) error {
		if _, err := q.DeleteSlot(ctx, key); err != nil {
			return fmt.Errorf("q.DeleteSlot: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("s.locked: %w", err)
	}

	return nil
}
