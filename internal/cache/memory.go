package cache

import (
	"context"
	"sync"
	"time"
)

// memoryItem pairs a record with its absolute expiry.
type memoryItem struct {
	rec       Record
	expiresAt time.Time
}

// MemoryBackend is the in-process cache store. Records live in a map
// keyed by exact key; an explicit insertion-order list doubles as the
// write-time index for recency scans and oldest-first eviction.
type MemoryBackend struct {
	mu    sync.Mutex
	items map[string]memoryItem
	order []string
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string]memoryItem),
	}
}

// Name identifies the backend.
func (b *MemoryBackend) Name() string {
	return BackendMemory
}

// Get reads a record, lazily deleting it if expired.
func (b *MemoryBackend) Get(_ context.Context, key string) (*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[key]
	if !ok {
		return nil, nil
	}
	if !item.expiresAt.IsZero() && !item.expiresAt.After(time.Now()) {
		delete(b.items, key)
		b.removeFromOrder(key)
		return nil, nil
	}

	rec := item.rec
	rec.Embedding = append([]float32(nil), item.rec.Embedding...)
	return &rec, nil
}

// Set writes a record. A new key is appended to the insertion order; an
// existing key keeps its original write position.
func (b *MemoryBackend) Set(_ context.Context, key string, rec *Record, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.items[key]; !ok {
		b.order = append(b.order, key)
	}
	stored := *rec
	stored.Embedding = append([]float32(nil), rec.Embedding...)
	b.items[key] = memoryItem{
		rec:       stored,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a record and its order entry.
func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.items, key)
	b.removeFromOrder(key)
	return nil
}

// LatestKeys returns up to limit keys, most recently written first.
func (b *MemoryBackend) LatestKeys(_ context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var keys []string
	for i := len(b.order) - 1; i >= 0 && len(keys) < limit; i-- {
		key := b.order[i]
		if _, ok := b.items[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// OldestKeys returns up to n keys, oldest write time first.
func (b *MemoryBackend) OldestKeys(_ context.Context, n int) ([]string, error) {
	if n < 1 {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var keys []string
	for _, key := range b.order {
		if len(keys) >= n {
			break
		}
		if _, ok := b.items[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Count returns the number of entries.
func (b *MemoryBackend) Count(_ context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items), nil
}

// Clear removes all entries and returns how many were removed.
func (b *MemoryBackend) Clear(_ context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := len(b.items)
	b.items = make(map[string]memoryItem)
	b.order = nil
	return count, nil
}

// removeFromOrder drops a key from the insertion-order list.
// Caller must hold the lock.
func (b *MemoryBackend) removeFromOrder(key string) {
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			return
		}
	}
}
