package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcache/ragcache/internal/cache"
	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/embeddings"
	"github.com/ragcache/ragcache/internal/ingest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "vectors.json")
	cfg.Embeddings.Dimension = 32
	return cfg
}

func TestNew(t *testing.T) {
	eng, err := New(testConfig(t))
	require.NoError(t, err)

	assert.NotNil(t, eng.Embedder)
	assert.NotNil(t, eng.Store)
	assert.NotNil(t, eng.Retriever)
	assert.NotNil(t, eng.Cache)

	assert.Equal(t, embeddings.ModelHashing, eng.Retriever.EmbeddingModelName())
	assert.Equal(t, 0, eng.Retriever.IndexSize())
}

func TestNewRejectsInvalidDimension(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embeddings.Dimension = 0

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestEngineEndToEnd(t *testing.T) {
	eng, err := New(testConfig(t))
	require.NoError(t, err)
	ctx := context.Background()

	// Index a small corpus through the retriever.
	chunks := []ingest.SourceChunk{
		{ID: "a", Text: "kubernetes deployment rollout strategies", Metadata: map[string]string{"source_path": "docs/k8s.md", "chunk_index": "0"}},
		{ID: "b", Text: "baking sourdough bread at home", Metadata: map[string]string{"source_path": "docs/bread.md", "chunk_index": "0"}},
	}
	stats, err := eng.Retriever.Index(ctx, chunks, false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.IndexedChunks)

	results, err := eng.Retriever.Retrieve(ctx, "kubernetes rollout strategies", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)

	// Cache a completion and read it back.
	eng.Cache.Store(ctx, "how do rollouts work", "gradually")
	res := eng.Cache.Lookup(ctx, "how do rollouts work", true)
	assert.True(t, res.Hit)
	assert.Equal(t, cache.HitExact, res.HitType)
}

func TestIngestOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ingest.DataDir = "/tmp/docs"
	cfg.Ingest.ChunkSize = 200

	eng, err := New(cfg)
	require.NoError(t, err)

	opts := eng.IngestOptions()
	assert.Equal(t, "/tmp/docs", opts.DataDir)
	assert.Equal(t, 200, opts.ChunkSize)
	assert.Equal(t, cfg.Ignore, opts.IgnorePatterns)
}
