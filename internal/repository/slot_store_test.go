package repository_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	testSlotStore(t, repository.NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := repository.NewFileStore(dir)

	testSlotStore(t, store)

	t.Run("key with path separators stays inside dir: ok", func(t *testing.T) {
		err := store.Put(t.Context(), "../escape/me", []byte(`{}`))
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repository.NewRedisStore(client, 24*time.Hour)

	testSlotStore(t, store)

	t.Run("ttl and prefix: ok", func(t *testing.T) {
		err := store.Put(t.Context(), "ttl-key", []byte(`{"version":1}`))
		require.NoError(t, err)

		assert.True(t, mr.Exists("cart:ttl-key"))
		ttl := mr.TTL("cart:ttl-key")
		assert.True(t, ttl > 23*time.Hour, "expected TTL > 23h, got %v", ttl)
		assert.True(t, ttl <= 24*time.Hour, "expected TTL <= 24h, got %v", ttl)
	})

	t.Run("server down: error", func(t *testing.T) {
		mr.Close()

		_, err := store.Get(t.Context(), "any")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrSlotNotFound)
	})
}

// testSlotStore runs the behaviour every SlotStore implementation shares.
func testSlotStore(t *testing.T, store port.SlotStore) {
	t.Helper()

	t.Run("get missing slot: not found", func(t *testing.T) {
		_, err := store.Get(t.Context(), gofakeit.UUID())
		assert.ErrorIs(t, err, repository.ErrSlotNotFound)
	})

	t.Run("put then get: ok", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()

		require.NoError(t, store.Put(ctx, key, []byte(`{"version":1,"items":[]}`)))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":1,"items":[]}`, string(got))
	})

	t.Run("last write wins: ok", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()

		require.NoError(t, store.Put(ctx, key, []byte(`{"n":1}`)))
		require.NoError(t, store.Put(ctx, key, []byte(`{"n":2}`)))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":2}`, string(got))
	})

	t.Run("delete: ok", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()

		require.NoError(t, store.Put(ctx, key, []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, repository.ErrSlotNotFound)
	})

	t.Run("delete missing slot: ok", func(t *testing.T) {
		assert.NoError(t, store.Delete(t.Context(), gofakeit.UUID()))
	})

	t.Run("empty key: error", func(t *testing.T) {
		ctx := t.Context()

		_, err := store.Get(ctx, "")
		assert.EqualError(t, err, "key is empty")
		assert.EqualError(t, store.Put(ctx, "", []byte(`{}`)), "key is empty")
		assert.EqualError(t, store.Delete(ctx, ""), "key is empty")
	})
}
