// Package cache implements the exact+semantic completion cache with
// pluggable backends, TTL expiry, and bounded-size eviction.
package cache

import (
	"context"
	"time"
)

// HitType classifies a single lookup.
type HitType string

const (
	HitExact    HitType = "exact"
	HitSemantic HitType = "semantic"
	HitMiss     HitType = "miss"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// LookupResult is the outcome of a single cache lookup.
type LookupResult struct {
	Hit     bool    `json:"hit"`
	Output  string  `json:"output,omitempty"`
	HitType HitType `json:"hit_type"`
}

// Record is a cached prompt/completion pair with the prompt's embedding
// attached for semantic matching. Timestamps are unix seconds.
type Record struct {
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
	Embedding []float32 `json:"embedding"`
	CreatedAt float64   `json:"created_at"`
	ExpiresAt float64   `json:"expires_at,omitempty"`
}

// Status is the observable cache state surface.
type Status struct {
	Enabled             bool          `json:"enabled"`
	ConfiguredBackend   string        `json:"configured_backend"`
	ActiveBackend       string        `json:"active_backend"`
	BackendConnected    bool          `json:"backend_connected"`
	TTLSeconds          int           `json:"ttl_seconds"`
	MaxEntries          int           `json:"max_entries"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
	SemanticScanLimit   int           `json:"semantic_scan_limit"`
	Entries             int           `json:"entries"`
	Stats               StatsSnapshot `json:"stats"`
}

// Backend abstracts the cache storage: a networked key-value store with
// a write-time secondary index, or the in-process fallback. Absent and
// expired records surface as (nil, nil), never as errors.
type Backend interface {
	// Name identifies the backend ("memory" or "redis").
	Name() string

	// Get reads a record. Expired or missing records return nil.
	Get(ctx context.Context, key string) (*Record, error)

	// Set writes a record under key with the given TTL and records its
	// write time in the recency index.
	Set(ctx context.Context, key string, rec *Record, ttl time.Duration) error

	// Delete removes a record and its index entry.
	Delete(ctx context.Context, key string) error

	// LatestKeys returns up to limit keys, most recently written first.
	LatestKeys(ctx context.Context, limit int) ([]string, error)

	// OldestKeys returns up to n keys, oldest write time first.
	OldestKeys(ctx context.Context, n int) ([]string, error)

	// Count returns the number of live entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
