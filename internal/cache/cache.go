package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/embeddings"
	"github.com/ragcache/ragcache/internal/vector"
)

// SemanticCache maps prompts to previously produced completions via
// exact-match and similarity-match lookup. Internal failures degrade to
// "as if the cache were empty"; they are counted, never propagated.
type SemanticCache struct {
	cfg      config.CacheConfig
	embedder embeddings.Service
	backend  Backend
	stats    Stats
}

// New constructs a cache with its backend selected once. When the redis
// backend is configured but unreachable, the cache permanently falls
// back to the in-process backend for the remainder of the process,
// counting a single error; the connection is never retried.
func New(cfg config.CacheConfig, embedder embeddings.Service) *SemanticCache {
	c := &SemanticCache{
		cfg:      cfg,
		embedder: embedder,
	}
	c.backend = c.initBackend()
	return c
}

// initBackend probes the configured backend and selects the fallback if
// the probe fails. Called exactly once, from New.
func (c *SemanticCache) initBackend() Backend {
	if !c.cfg.Enabled || strings.ToLower(c.cfg.Backend) != BackendRedis {
		return NewMemoryBackend()
	}

	backend, err := NewRedisBackend(c.cfg.RedisURL, c.cfg.Namespace)
	if err != nil {
		log.Warn("Redis backend unavailable, falling back to in-process cache", "error", err)
		c.stats.IncErrors()
		return NewMemoryBackend()
	}

	log.Debug("Connected to redis cache backend", "namespace", c.cfg.Namespace)
	return backend
}

// exactKey derives the exact-match key from the normalized prompt.
// Normalization trims surrounding whitespace and lowercases, so
// case/whitespace variants of a prompt share one key.
func (c *SemanticCache) exactKey(prompt string) string {
	normalized := strings.ToLower(strings.TrimSpace(prompt))
	return fmt.Sprintf("%s:cache:exact:%016x", c.cfg.Namespace, xxhash.Sum64String(normalized))
}

// ttl returns the configured record lifetime, at least one second.
func (c *SemanticCache) ttl() time.Duration {
	ttlSeconds := c.cfg.TTLSeconds
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}
	return time.Duration(ttlSeconds) * time.Second
}

// Lookup classifies a prompt as an exact hit, a semantic hit, or a miss.
// The exact path is a single keyed read; the semantic path embeds the
// prompt and scans a bounded window of the most recently written records.
func (c *SemanticCache) Lookup(ctx context.Context, prompt string, allowSemantic bool) LookupResult {
	if !c.cfg.Enabled {
		return LookupResult{HitType: HitMiss}
	}

	c.stats.IncRequests()

	rec, err := c.backend.Get(ctx, c.exactKey(prompt))
	if err != nil {
		c.stats.IncErrors()
		log.Debug("Cache exact read failed", "error", err)
	}
	if rec != nil && rec.Output != "" {
		c.stats.IncExactHits()
		return LookupResult{Hit: true, Output: rec.Output, HitType: HitExact}
	}

	if !allowSemantic {
		c.stats.IncMisses()
		return LookupResult{HitType: HitMiss}
	}

	queryEmbedding, err := c.embedder.Embed(ctx, prompt)
	if err != nil {
		c.stats.IncErrors()
		c.stats.IncMisses()
		log.Debug("Cache query embedding failed", "error", err)
		return LookupResult{HitType: HitMiss}
	}

	keys, err := c.backend.LatestKeys(ctx, c.cfg.SemanticScanLimit)
	if err != nil {
		c.stats.IncErrors()
		c.stats.IncMisses()
		log.Debug("Cache recency scan failed", "error", err)
		return LookupResult{HitType: HitMiss}
	}

	bestScore := -1.0
	bestOutput := ""
	found := false
	for _, key := range keys {
		item, err := c.backend.Get(ctx, key)
		if err != nil {
			c.stats.IncErrors()
			continue
		}
		if item == nil || len(item.Embedding) == 0 || item.Output == "" {
			continue
		}

		score := vector.Cosine(queryEmbedding, item.Embedding)
		if score >= c.cfg.SimilarityThreshold && score > bestScore {
			bestScore = score
			bestOutput = item.Output
			found = true
		}
	}

	if found {
		c.stats.IncSemanticHits()
		log.Debug("Semantic cache hit", "score", bestScore)
		return LookupResult{Hit: true, Output: bestOutput, HitType: HitSemantic}
	}

	c.stats.IncMisses()
	return LookupResult{HitType: HitMiss}
}

// Store writes a completion under the prompt's exact key with the
// prompt's embedding attached, then evicts down to capacity. Failures
// are counted and swallowed; a failed cache write must never fail the
// surrounding request.
func (c *SemanticCache) Store(ctx context.Context, prompt, output string) {
	if !c.cfg.Enabled {
		return
	}

	embedding, err := c.embedder.Embed(ctx, prompt)
	if err != nil {
		c.stats.IncErrors()
		log.Warn("Cache write embedding failed", "error", err)
		return
	}

	now := time.Now()
	ttl := c.ttl()
	rec := &Record{
		Prompt:    prompt,
		Output:    output,
		Embedding: embedding,
		CreatedAt: unixSeconds(now),
		ExpiresAt: unixSeconds(now.Add(ttl)),
	}

	if err := c.backend.Set(ctx, c.exactKey(prompt), rec, ttl); err != nil {
		c.stats.IncErrors()
		log.Warn("Cache write failed", "error", err)
		return
	}

	c.stats.IncWrites()
	c.evictIfNeeded(ctx)
}

// evictIfNeeded removes oldest-by-write-time entries until the entry
// count is back at the configured maximum.
func (c *SemanticCache) evictIfNeeded(ctx context.Context) {
	maxEntries := c.cfg.MaxEntries
	if maxEntries < 1 {
		maxEntries = 1
	}

	count, err := c.backend.Count(ctx)
	if err != nil {
		c.stats.IncErrors()
		return
	}
	if count <= maxEntries {
		return
	}

	oldest, err := c.backend.OldestKeys(ctx, count-maxEntries)
	if err != nil {
		c.stats.IncErrors()
		return
	}
	for _, key := range oldest {
		if err := c.backend.Delete(ctx, key); err != nil {
			c.stats.IncErrors()
		}
	}
	log.Debug("Evicted cache entries", "count", len(oldest))
}

// Clear deletes all records and returns how many were removed.
func (c *SemanticCache) Clear(ctx context.Context) int {
	removed, err := c.backend.Clear(ctx)
	if err != nil {
		c.stats.IncErrors()
		log.Warn("Cache clear failed", "error", err)
	}
	c.stats.IncInvalidations()
	return removed
}

// Status reports the full observable cache state.
func (c *SemanticCache) Status(ctx context.Context) Status {
	entries, err := c.backend.Count(ctx)
	if err != nil {
		c.stats.IncErrors()
	}

	active := c.backend.Name()
	return Status{
		Enabled:             c.cfg.Enabled,
		ConfiguredBackend:   strings.ToLower(c.cfg.Backend),
		ActiveBackend:       active,
		BackendConnected:    active == strings.ToLower(c.cfg.Backend),
		TTLSeconds:          c.cfg.TTLSeconds,
		MaxEntries:          c.cfg.MaxEntries,
		SimilarityThreshold: c.cfg.SimilarityThreshold,
		SemanticScanLimit:   c.cfg.SemanticScanLimit,
		Entries:             entries,
		Stats:               c.stats.Snapshot(),
	}
}

// unixSeconds converts a time to float unix seconds, the score unit of
// the write-time index.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
