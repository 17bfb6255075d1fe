// Package engine wires the embedding model, vector store, retriever,
// and semantic cache into one explicitly constructed context object
// that request handlers and commands receive by injection.
package engine

import (
	"fmt"

	"github.com/ragcache/ragcache/internal/cache"
	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/embeddings"
	"github.com/ragcache/ragcache/internal/ingest"
	"github.com/ragcache/ragcache/internal/retriever"
	"github.com/ragcache/ragcache/internal/vector"
)

// Engine holds the constructed engine components. There is no implicit
// global instance; construct one and pass it where needed.
type Engine struct {
	Config    *config.Config
	Embedder  embeddings.Service
	Store     *vector.Store
	Retriever *retriever.Retriever
	Cache     *cache.SemanticCache
}

// New constructs the engine in dependency order: embedder first, then
// the vector store (loading its snapshot), then the retriever and the
// cache sharing the same embedder. An invalid embedding dimension is a
// fatal configuration error and aborts construction.
func New(cfg *config.Config) (*Engine, error) {
	embedder, err := embeddings.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding model: %w", err)
	}

	store, err := vector.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	return &Engine{
		Config:    cfg,
		Embedder:  embedder,
		Store:     store,
		Retriever: retriever.New(embedder, store),
		Cache:     cache.New(cfg.Cache, embedder),
	}, nil
}

// IngestOptions derives document ingestion options from the configuration.
func (e *Engine) IngestOptions() ingest.Options {
	return ingest.Options{
		DataDir:        e.Config.Ingest.DataDir,
		ChunkSize:      e.Config.Ingest.ChunkSize,
		ChunkOverlap:   e.Config.Ingest.ChunkOverlap,
		MaxFileSize:    int64(e.Config.Ingest.MaxFileSize),
		MaxFileCount:   e.Config.Ingest.MaxFileCount,
		IgnorePatterns: e.Config.Ignore,
	}
}
