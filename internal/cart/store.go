// Package cart holds the in-memory shopping cart and keeps it in sync with
// durable storage.
//
// Lines are identified by product id and variant. Adding an existing line
// increases its quantity; line order is insertion order. Every mutation is
// persisted on a best-effort basis: a storage failure is logged and the
// in-memory cart stays authoritative for the process lifetime.
package cart

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemRemoved     EventKind = "item_removed"
	EventQuantityUpdated EventKind = "quantity_updated"
	EventCleared         EventKind = "cleared"
)

// Event describes a completed mutation. Quantity is the line's resulting
// quantity, zero when the line is gone.
type Event struct {
	Kind     EventKind
	Key      domain.LineKey
	Quantity int
}

// Listener is called after a mutation has been applied and persisted.
type Listener func(Event)

type Store struct {
	repo   port.CartRepository
	logger *slog.Logger

	mu        sync.Mutex
	cart      domain.Cart
	last      *Event
	listeners []Listener
}

// NewStore restores the saved cart. Anything that prevents restoring it
// (absent, malformed, storage down) yields an empty cart.
func NewStore(ctx context.Context, repo port.CartRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		repo:   repo,
		logger: logger,
	}

	restored, err := repo.GetCart(ctx)
	if err != nil {
		logger.WarnContext(ctx, "cart not restored, starting empty",
			slog.String("error", err.Error()),
		)
		return s
	}

	s.cart = restored
	logger.DebugContext(ctx, "cart restored",
		slog.Int("lines", len(restored.Items)),
		slog.Int("count", restored.Count()),
	)

	return s
}

type addOptions struct {
	variant  *domain.Variant
	quantity int
}

type AddOption func(*addOptions)

func WithShade(shade domain.Shade) AddOption {
	return func(o *addOptions) {
		v := domain.ShadeVariant(shade)
		o.variant = &v
	}
}

// WithoutShade adds the product with no variant even if it declares shades.
func WithoutShade() AddOption {
	return func(o *addOptions) {
		v := domain.NoVariant()
		o.variant = &v
	}
}

// WithQuantity sets the amount to add; values below one are ignored and
// values above domain.MaxLineQuantity are capped.
func WithQuantity(quantity int) AddOption {
	return func(o *addOptions) {
		if quantity > 0 {
			o.quantity = domain.ClampQuantity(quantity)
		}
	}
}

// AddItem adds quantity (default 1) of product in the given variant
// (default: first shade, or none). An existing line is merged into, up to
// domain.MaxLineQuantity.
func (s *Store) AddItem(ctx context.Context, product domain.Product, opts ...AddOption) {
	if product.ID == "" {
		s.logger.WarnContext(ctx, "add item ignored: empty product id")
		return
	}

	o := addOptions{quantity: 1}
	for _, opt := range opts {
		opt(&o)
	}

	variant := product.DefaultVariant()
	if o.variant != nil {
		variant = *o.variant
	}

	item := domain.LineItem{Product: product, Variant: variant, Quantity: o.quantity}
	key := item.Key()

	s.mutate(ctx, func(c *domain.Cart) (Event, bool) {
		if i := c.Find(key); i >= 0 {
			merged := domain.ClampQuantity(c.Items[i].Quantity + item.Quantity)
			if merged == c.Items[i].Quantity {
				return Event{}, false
			}
			c.Items[i].Quantity = merged
			return Event{Kind: EventItemAdded, Key: key, Quantity: merged}, true
		}

		c.Items = append(c.Items, item)
		return Event{Kind: EventItemAdded, Key: key, Quantity: item.Quantity}, true
	})

	s.logger.DebugContext(ctx, "item added to cart",
		slog.String("product_id", key.ProductID),
		slog.String("variant", key.Variant.String()),
		slog.Int("quantity", item.Quantity),
	)
}

// RemoveItem drops the matching line. Unknown lines are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID string, variant domain.VariantKey) {
	key := domain.LineKey{ProductID: productID, Variant: variant}

	s.mutate(ctx, func(c *domain.Cart) (Event, bool) {
		i := c.Find(key)
		if i < 0 {
			return Event{}, false
		}

		c.Items = slices.Delete(c.Items, i, i+1)
		return Event{Kind: EventItemRemoved, Key: key}, true
	})
}

// UpdateQuantity sets the line's quantity; zero or less removes the line
// and values above domain.MaxLineQuantity are capped.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, variant domain.VariantKey, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID, variant)
		return
	}
	quantity = domain.ClampQuantity(quantity)

	key := domain.LineKey{ProductID: productID, Variant: variant}

	s.mutate(ctx, func(c *domain.Cart) (Event, bool) {
		i := c.Find(key)
		if i < 0 || c.Items[i].Quantity == quantity {
			return Event{}, false
		}

		c.Items[i].Quantity = quantity
		return Event{Kind: EventQuantityUpdated, Key: key, Quantity: quantity}, true
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func(c *domain.Cart) (Event, bool) {
		c.Items = nil
		return Event{Kind: EventCleared}, true
	})
}

// Drain empties the cart and deletes its saved copy, returning what it
// held. The read and the clear happen under one lock, so no concurrent
// mutation is lost between them.
func (s *Store) Drain(ctx context.Context) domain.Cart {
	s.mu.Lock()

	drained := s.cart
	if drained.IsEmpty() {
		s.mu.Unlock()
		return domain.Cart{}
	}

	s.cart = domain.Cart{}
	ev := Event{Kind: EventCleared}
	s.last = &ev
	if err := s.repo.DeleteCart(ctx); err != nil {
		s.logger.WarnContext(ctx, "saved cart not deleted",
			slog.String("error", err.Error()),
		)
	}
	listeners := slices.Clone(s.listeners)

	s.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}

	return drained
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Total()
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Count()
}

// LastEvent reports the most recent mutation; the presentation layer opens
// the cart when it is an EventItemAdded.
func (s *Store) LastEvent() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return Event{}, false
	}
	return *s.last, true
}

// Subscribe registers l for every subsequent mutation.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
}

// mutate applies fn and persists the result while holding the lock, so a
// mutation is fully stored before the next one starts. Listeners run after
// the lock is released and may call back into the store.
func (s *Store) mutate(ctx context.Context, fn func(c *domain.Cart) (Event, bool)) {
	s.mu.Lock()

	ev, changed := fn(&s.cart)
	if !changed {
		s.mu.Unlock()
		return
	}

	s.last = &ev
	s.persist(ctx)
	listeners := slices.Clone(s.listeners)

	s.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

func (s *Store) persist(ctx context.Context) {
	if err := s.repo.SaveCart(ctx, s.cart.Clone()); err != nil {
		s.logger.WarnContext(ctx, "cart not persisted",
			slog.String("error", err.Error()),
			slog.Int("lines", len(s.cart.Items)),
		)
	}
}
