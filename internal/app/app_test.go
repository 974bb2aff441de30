package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/shopify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestNew_Storages(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr bool
	}{
		{name: "memory", modify: func(c *config.Config) { c.Storage = config.StorageMemory }},
		{name: "file", modify: func(c *config.Config) { c.Storage = config.StorageFile; c.CartDir = t.TempDir() }},
		{name: "redis", modify: func(c *config.Config) { c.Storage = config.StorageRedis; c.RedisAddr = mr.Addr() }},
		{name: "unknown", modify: func(c *config.Config) { c.Storage = "sqlite" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)

			a, err := New(t.Context(), cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(a.Close)

			a.Store.AddItem(t.Context(), product())
			assert.Equal(t, 1, a.Store.Count())
		})
	}
}

func TestNew_RestoresPersistedCart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = config.StorageFile
	cfg.CartDir = t.TempDir()

	first, err := New(t.Context(), cfg, discardLogger())
	require.NoError(t, err)
	first.Store.AddItem(t.Context(), product())
	first.Store.AddItem(t.Context(), product())
	first.Close()

	second, err := New(t.Context(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(second.Close)

	assert.Equal(t, 2, second.Store.Count())
}

func TestNew_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Storage = config.StorageRedis
	cfg.RedisAddr = addr

	a, err := New(t.Context(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	a.Store.AddItem(t.Context(), product())
	assert.Equal(t, 1, a.Store.Count())
}

func TestHandler_CatalogNotConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDomain = ""

	a, err := New(t.Context(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Catalog.ListProducts(t.Context(), 1)
	assert.ErrorIs(t, err, shopify.ErrStoreNotConfigured)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("CART_STORAGE", "memory")
	t.Setenv("CART_DIR", t.TempDir())
	cfg, err := config.Load(writeEmptyEnv(t))
	require.NoError(t, err)
	return cfg
}

func writeEmptyEnv(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func product() domain.Product {
	return domain.Product{ID: "P1", Name: "Gloss", Price: domain.NewMoney(decimal.NewFromInt(10), currency.USD)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
