package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/cache"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "snapshot", []byte(`{"zones":3}`), time.Minute))

	got, err := store.Get(ctx, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"zones":3}`), got)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := cache.NewMemoryStore()

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := cache.NewMemoryStoreWithClock(clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "snapshot", []byte("data"), 15*time.Minute))

	// Still fresh just before the TTL.
	clock.Advance(14 * time.Minute)
	_, err := store.Get(ctx, "snapshot")
	require.NoError(t, err)

	// Expired after the TTL elapses.
	clock.Advance(2 * time.Minute)
	_, err = store.Get(ctx, "snapshot")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("old"), time.Minute))
	require.NoError(t, store.Set(ctx, "key", []byte("new"), time.Minute))

	got, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value"), time.Minute))
	require.NoError(t, store.Delete(ctx, "key"))

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Clear(ctx))

	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_LenSkipsExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := cache.NewMemoryStoreWithClock(clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "long", []byte("2"), time.Hour))

	clock.Advance(10 * time.Minute)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := cache.NewMemoryStoreWithClock(clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale", []byte("1"), time.Minute))

	// A write after the sweep interval triggers removal of expired entries.
	clock.Advance(6 * time.Minute)
	require.NoError(t, store.Set(ctx, "fresh", []byte("2"), time.Hour))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
