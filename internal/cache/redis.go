package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend stores records as JSON values with a native TTL, plus a
// ZSET scored by write time that serves as the recency index for
// "N most recent" scans and oldest-first eviction. Redis may expire a
// value before its index entry is removed; readers treat such keys as
// absent and eviction tolerates them.
type RedisBackend struct {
	client    *redis.Client
	namespace string
}

// NewRedisBackend connects to Redis and verifies the connection with a
// single ping. A failed ping is returned to the caller so the factory
// can fall back to the in-process backend.
func NewRedisBackend(redisURL, namespace string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return &RedisBackend{
		client:    client,
		namespace: namespace,
	}, nil
}

// Name identifies the backend.
func (b *RedisBackend) Name() string {
	return BackendRedis
}

// indexKey returns the ZSET key holding the write-time index.
func (b *RedisBackend) indexKey() string {
	return b.namespace + ":cache:index"
}

// exactPattern matches all record keys in this namespace.
func (b *RedisBackend) exactPattern() string {
	return b.namespace + ":cache:exact:*"
}

// Get reads a record. Missing keys and keys already expired by Redis
// return nil; a malformed payload is an error the caller counts.
func (b *RedisBackend) Get(ctx context.Context, key string) (*Record, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("malformed cache payload for %s: %w", key, err)
	}
	return &rec, nil
}

// Set writes a record with a native TTL and indexes its write time.
func (b *RedisBackend) Set(ctx context.Context, key string, rec *Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize cache record: %w", err)
	}

	if err := b.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	err = b.client.ZAdd(ctx, b.indexKey(), &redis.Z{
		Score:  rec.CreatedAt,
		Member: key,
	}).Err()
	if err != nil {
		return fmt.Errorf("redis index update failed: %w", err)
	}
	return nil
}

// Delete removes a record and its index entry.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	if err := b.client.ZRem(ctx, b.indexKey(), key).Err(); err != nil {
		return fmt.Errorf("redis index removal failed: %w", err)
	}
	return nil
}

// LatestKeys returns up to limit keys, most recently written first.
func (b *RedisBackend) LatestKeys(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = 1
	}

	keys, err := b.client.ZRevRange(ctx, b.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index scan failed: %w", err)
	}
	return keys, nil
}

// OldestKeys returns up to n keys, oldest write time first.
func (b *RedisBackend) OldestKeys(ctx context.Context, n int) ([]string, error) {
	if n < 1 {
		return nil, nil
	}

	keys, err := b.client.ZRange(ctx, b.indexKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index scan failed: %w", err)
	}
	return keys, nil
}

// Count returns the number of indexed entries.
func (b *RedisBackend) Count(ctx context.Context) (int, error) {
	n, err := b.client.ZCard(ctx, b.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis index count failed: %w", err)
	}
	return int(n), nil
}

// Clear deletes every record in the namespace along with the index and
// returns how many record keys were removed.
func (b *RedisBackend) Clear(ctx context.Context) (int, error) {
	removed := 0
	iter := b.client.Scan(ctx, 0, b.exactPattern(), 0).Iterator()
	for iter.Next(ctx) {
		if err := b.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("redis delete failed: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan failed: %w", err)
	}

	if err := b.client.Del(ctx, b.indexKey()).Err(); err != nil {
		return removed, fmt.Errorf("redis index delete failed: %w", err)
	}
	return removed, nil
}

// Close releases the underlying client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
