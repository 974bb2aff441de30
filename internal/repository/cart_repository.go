package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/snapshot"
)

// DefaultCartKey is the fixed slot the storefront cart lives in.
const DefaultCartKey = "shinybae-cart"

var ErrSlotNotFound = errors.New("slot not found")

type cartRepository struct {
	store port.SlotStore
	key   string
}

func NewCart(store port.SlotStore, key string) (port.CartRepository, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &cartRepository{
		store: store,
		key:   key,
	}, nil
}

// GetCart returns an empty cart when nothing has been saved yet.
func (r *cartRepository) GetCart(ctx context.Context) (domain.Cart, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, ErrSlotNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("store.Get: %w", err)
	}

	cart, err := snapshot.Decode(data)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("snapshot.Decode: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	data, err := snapshot.Encode(cart)
	if err != nil {
		return fmt.Errorf("snapshot.Encode: %w", err)
	}

	if err := r.store.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteCart(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}

	return nil
}
