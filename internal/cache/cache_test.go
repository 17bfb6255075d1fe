package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/embeddings"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:             true,
		Backend:             BackendMemory,
		Namespace:           "test",
		TTLSeconds:          60,
		MaxEntries:          100,
		SimilarityThreshold: 0.9,
		SemanticScanLimit:   10,
	}
}

func newTestCache(t *testing.T, cfg config.CacheConfig) *SemanticCache {
	t.Helper()

	embedder, err := embeddings.NewHashingModel(8)
	require.NoError(t, err)

	return New(cfg, embedder)
}

func TestLookupClassification(t *testing.T) {
	c := newTestCache(t, testCacheConfig())
	ctx := context.Background()

	c.Store(ctx, "what is 2+2", "4")

	t.Run("identical prompt is an exact hit", func(t *testing.T) {
		res := c.Lookup(ctx, "what is 2+2", true)

		assert.True(t, res.Hit)
		assert.Equal(t, HitExact, res.HitType)
		assert.Equal(t, "4", res.Output)
	})

	t.Run("case and whitespace variants are exact hits", func(t *testing.T) {
		res := c.Lookup(ctx, "  What Is 2+2  ", true)

		assert.True(t, res.Hit)
		assert.Equal(t, HitExact, res.HitType)
		assert.Equal(t, "4", res.Output)
	})

	t.Run("same tokens with different punctuation is a semantic hit", func(t *testing.T) {
		// "what is 2+2?" normalizes to a different exact key but embeds
		// to the same token set, so it matches above the threshold.
		res := c.Lookup(ctx, "what is 2+2?", true)

		assert.True(t, res.Hit)
		assert.Equal(t, HitSemantic, res.HitType)
		assert.Equal(t, "4", res.Output)
	})

	t.Run("near miss below the threshold is a miss", func(t *testing.T) {
		res := c.Lookup(ctx, "what is 2+2 really", true)

		assert.False(t, res.Hit)
		assert.Equal(t, HitMiss, res.HitType)
	})

	t.Run("unrelated prompt is a miss", func(t *testing.T) {
		res := c.Lookup(ctx, "explain photosynthesis in plants", true)

		assert.False(t, res.Hit)
		assert.Equal(t, HitMiss, res.HitType)
	})

	t.Run("semantic matching can be disabled per lookup", func(t *testing.T) {
		res := c.Lookup(ctx, "what is 2+2?", false)

		assert.False(t, res.Hit)
		assert.Equal(t, HitMiss, res.HitType)
	})
}

func TestLookupStats(t *testing.T) {
	c := newTestCache(t, testCacheConfig())
	ctx := context.Background()

	c.Store(ctx, "what is 2+2", "4")
	c.Lookup(ctx, "what is 2+2", true)             // exact
	c.Lookup(ctx, "what is 2+2?", true)            // semantic
	c.Lookup(ctx, "unrelated topic entirely", true) // miss

	snap := c.stats.Snapshot()
	assert.Equal(t, int64(3), snap.Requests)
	assert.Equal(t, int64(1), snap.ExactHits)
	assert.Equal(t, int64(1), snap.SemanticHits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, int64(1), snap.Writes)
	assert.InDelta(t, 0.6667, snap.HitRatio, 1e-9)
}

func TestDisabledCache(t *testing.T) {
	cfg := testCacheConfig()
	cfg.Enabled = false
	c := newTestCache(t, cfg)
	ctx := context.Background()

	c.Store(ctx, "prompt", "output")
	res := c.Lookup(ctx, "prompt", true)

	assert.False(t, res.Hit)
	assert.Equal(t, HitMiss, res.HitType)

	// A disabled cache counts nothing.
	snap := c.stats.Snapshot()
	assert.Equal(t, int64(0), snap.Requests)
	assert.Equal(t, int64(0), snap.Writes)

	status := c.Status(ctx)
	assert.False(t, status.Enabled)
	assert.Equal(t, 0, status.Entries)
}

func TestEviction(t *testing.T) {
	cfg := testCacheConfig()
	cfg.MaxEntries = 3
	c := newTestCache(t, cfg)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		c.Store(ctx, fmt.Sprintf("distinct prompt number %d", i), fmt.Sprintf("answer %d", i))
	}

	status := c.Status(ctx)
	assert.Equal(t, 3, status.Entries)

	// The two oldest writes are gone, the newest three remain.
	for i := 1; i <= 2; i++ {
		res := c.Lookup(ctx, fmt.Sprintf("distinct prompt number %d", i), false)
		assert.False(t, res.Hit, "entry %d should have been evicted", i)
	}
	for i := 3; i <= 5; i++ {
		res := c.Lookup(ctx, fmt.Sprintf("distinct prompt number %d", i), false)
		assert.True(t, res.Hit, "entry %d should have survived eviction", i)
		assert.Equal(t, fmt.Sprintf("answer %d", i), res.Output)
	}
}

func TestExpiry(t *testing.T) {
	cfg := testCacheConfig()
	cfg.TTLSeconds = 1
	c := newTestCache(t, cfg)
	ctx := context.Background()

	c.Store(ctx, "short lived prompt", "output")

	res := c.Lookup(ctx, "short lived prompt", false)
	require.True(t, res.Hit)

	time.Sleep(1100 * time.Millisecond)

	res = c.Lookup(ctx, "short lived prompt", false)
	assert.False(t, res.Hit)
	assert.Equal(t, HitMiss, res.HitType)
}

func TestClear(t *testing.T) {
	c := newTestCache(t, testCacheConfig())
	ctx := context.Background()

	c.Store(ctx, "one", "1")
	c.Store(ctx, "two", "2")

	removed := c.Clear(ctx)
	assert.Equal(t, 2, removed)

	res := c.Lookup(ctx, "one", false)
	assert.False(t, res.Hit)

	snap := c.stats.Snapshot()
	assert.Equal(t, int64(1), snap.Invalidations)
}

func TestStatus(t *testing.T) {
	c := newTestCache(t, testCacheConfig())
	ctx := context.Background()

	c.Store(ctx, "prompt", "output")
	status := c.Status(ctx)

	assert.True(t, status.Enabled)
	assert.Equal(t, BackendMemory, status.ConfiguredBackend)
	assert.Equal(t, BackendMemory, status.ActiveBackend)
	assert.True(t, status.BackendConnected)
	assert.Equal(t, 60, status.TTLSeconds)
	assert.Equal(t, 100, status.MaxEntries)
	assert.Equal(t, 0.9, status.SimilarityThreshold)
	assert.Equal(t, 10, status.SemanticScanLimit)
	assert.Equal(t, 1, status.Entries)
	assert.Equal(t, int64(1), status.Stats.Writes)
}

func TestRedisFallback(t *testing.T) {
	cfg := testCacheConfig()
	cfg.Backend = BackendRedis
	cfg.RedisURL = "redis://127.0.0.1:1"
	c := newTestCache(t, cfg)
	ctx := context.Background()

	status := c.Status(ctx)
	assert.Equal(t, BackendRedis, status.ConfiguredBackend)
	assert.Equal(t, BackendMemory, status.ActiveBackend)
	assert.False(t, status.BackendConnected)
	assert.Equal(t, int64(1), status.Stats.Errors)

	// The fallback serves the identical contract.
	c.Store(ctx, "what is 2+2", "4")
	res := c.Lookup(ctx, "what is 2+2", true)
	assert.True(t, res.Hit)
	assert.Equal(t, HitExact, res.HitType)
}

func TestCacheWithRedisBackend(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := testCacheConfig()
	cfg.Backend = BackendRedis
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.MaxEntries = 2
	c := newTestCache(t, cfg)
	ctx := context.Background()

	t.Run("backend is connected", func(t *testing.T) {
		status := c.Status(ctx)
		assert.Equal(t, BackendRedis, status.ActiveBackend)
		assert.True(t, status.BackendConnected)
	})

	t.Run("exact and semantic hits", func(t *testing.T) {
		c.Store(ctx, "what is 2+2", "4")

		res := c.Lookup(ctx, "what is 2+2", true)
		assert.Equal(t, HitExact, res.HitType)

		res = c.Lookup(ctx, "what is 2+2?", true)
		assert.Equal(t, HitSemantic, res.HitType)
		assert.Equal(t, "4", res.Output)
	})

	t.Run("eviction by oldest write time", func(t *testing.T) {
		c.Store(ctx, "second distinct prompt", "2")
		c.Store(ctx, "third distinct prompt", "3")

		status := c.Status(ctx)
		assert.Equal(t, 2, status.Entries)

		res := c.Lookup(ctx, "what is 2+2", false)
		assert.False(t, res.Hit, "oldest entry should have been evicted")
	})

	t.Run("expiry is a miss", func(t *testing.T) {
		mr.FastForward(61 * time.Second)

		res := c.Lookup(ctx, "third distinct prompt", false)
		assert.False(t, res.Hit)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		c.Store(ctx, "fresh prompt", "out")
		removed := c.Clear(ctx)
		assert.GreaterOrEqual(t, removed, 1)

		status := c.Status(ctx)
		assert.Equal(t, 0, status.Entries)
	})
}
