package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func entry(key string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Key:       key,
		Score:     0.9,
		Stage:     core.StageQualified,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", time.Hour)))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Score)
	assert.Equal(t, core.StageQualified, got.Stage)
}

func TestMemoryCache_MissingKey(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestMemoryCache_ExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", -time.Minute)))

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", time.Hour)))
	require.NoError(t, c.Delete(ctx, "k1"))

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestMemoryCache_CleanupRemovesExpired(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("live", time.Hour)))
	require.NoError(t, c.Set(ctx, entry("dead", -time.Minute)))

	require.NoError(t, c.Cleanup(ctx))

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Contains(t, c.entries, "live")
	assert.NotContains(t, c.entries, "dead")
}

func TestMemoryCache_SetOverwrites(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", time.Hour)))

	updated := entry("k1", time.Hour)
	updated.Score = 0.2
	updated.Stage = core.StageNew
	require.NoError(t, c.Set(ctx, updated))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 0.2, got.Score)
	assert.Equal(t, core.StageNew, got.Stage)
}
