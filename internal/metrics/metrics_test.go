package metrics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestObserveStore(t *testing.T) {
	ctx := t.Context()
	m := metrics.New(prometheus.NewRegistry())

	repo, err := repository.NewCart(repository.NewMemoryStore(), repository.DefaultCartKey)
	require.NoError(t, err)
	s := cart.NewStore(ctx, repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	m.ObserveStore(s)

	p := domain.Product{ID: "P1", Price: domain.NewMoney(decimal.NewFromInt(10), currency.USD)}
	s.AddItem(ctx, p, cart.WithQuantity(2))
	s.AddItem(ctx, p)
	s.UpdateQuantity(ctx, "P1", domain.VariantKey{}, 5)
	s.RemoveItem(ctx, "absent", domain.VariantKey{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartMutations.WithLabelValues(string(cart.EventItemAdded))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues(string(cart.EventQuantityUpdated))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CartMutations.WithLabelValues(string(cart.EventItemRemoved))))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.CartItems))

	s.Clear(ctx)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CartItems))
}

func TestInstrumentProductSource(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	ok := m.InstrumentProductSource(sourceFunc(func(context.Context, int) ([]domain.Product, error) {
		return []domain.Product{{ID: "P1"}}, nil
	}))
	failing := m.InstrumentProductSource(sourceFunc(func(context.Context, int) ([]domain.Product, error) {
		return nil, errors.New("boom")
	}))

	products, err := ok.ListProducts(t.Context(), 25)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = failing.ListProducts(t.Context(), 25)
	assert.EqualError(t, err, "boom")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CatalogDuration))
}

func TestMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/cart/items/{productID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for range 3 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/items/P1", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/cart/items/{productID}", "404"))
	assert.Equal(t, 3.0, got)
}

type sourceFunc func(ctx context.Context, first int) ([]domain.Product, error)

func (f sourceFunc) ListProducts(ctx context.Context, first int) ([]domain.Product, error) {
	return f(ctx, first)
}
