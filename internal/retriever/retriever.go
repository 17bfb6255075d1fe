// Package retriever composes the embedding model and vector store to
// answer top-k relevance queries and build bounded context windows.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ragcache/ragcache/internal/embeddings"
	"github.com/ragcache/ragcache/internal/ingest"
	"github.com/ragcache/ragcache/internal/vector"
)

// Retriever answers "top-k most relevant chunks" queries over the store.
type Retriever struct {
	embedder embeddings.Service
	store    *vector.Store
}

// IndexStats reports the outcome of an indexing run.
type IndexStats struct {
	IndexedChunks      int    `json:"indexed_chunks"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
}

// New creates a Retriever over the given embedder and store.
func New(embedder embeddings.Service, store *vector.Store) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
	}
}

// EmbeddingModelName returns the name of the active embedding model.
func (r *Retriever) EmbeddingModelName() string {
	return r.embedder.ModelName()
}

// IndexSize returns the number of indexed chunks.
func (r *Retriever) IndexSize() int {
	return r.store.Size()
}

// Index embeds a batch of chunks and upserts them into the store,
// persisting the snapshot afterwards. With rebuild the store is cleared
// first so a different corpus or embedding dimension can be adopted.
func (r *Retriever) Index(ctx context.Context, chunks []ingest.SourceChunk, rebuild bool) (*IndexStats, error) {
	if rebuild {
		r.store.Clear()
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	records := make([]vector.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vector.Record{
			ID:        chunk.ID,
			Text:      chunk.Text,
			Embedding: embs[i],
			Metadata:  chunk.Metadata,
		}
	}

	if err := r.store.UpsertMany(records); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	if err := r.store.Save(); err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}

	log.Debug("Indexed chunks", "count", len(chunks), "total", r.store.Size())
	return &IndexStats{
		IndexedChunks:      r.store.Size(),
		EmbeddingModel:     r.embedder.ModelName(),
		EmbeddingDimension: r.embedder.Dimension(),
	}, nil
}

// Retrieve embeds the query and returns the top-k most similar chunks.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]vector.Result, error) {
	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return r.store.Search(queryEmbedding, topK), nil
}

// BuildContext retrieves results for the query and greedily concatenates
// them into a length-bounded context string. Result lines are taken in
// ranked order; the first line that would push the context past maxChars
// is dropped entirely and scanning stops there.
func (r *Retriever) BuildContext(ctx context.Context, query string, topK, maxChars int) (string, []vector.Result, error) {
	results, err := r.Retrieve(ctx, query, topK)
	if err != nil {
		return "", nil, err
	}

	var lines []string
	currentLen := 0
	for i, res := range results {
		source := res.Metadata[vector.MetaSourcePath]
		if source == "" {
			source = "unknown"
		}
		line := fmt.Sprintf("[%d] (score=%.3f, source=%s) %s", i+1, res.Score, source, res.Text)
		if currentLen+len(line) > maxChars {
			break
		}
		lines = append(lines, line)
		currentLen += len(line)
	}

	return strings.Join(lines, "\n"), results, nil
}

// BuildPrompt wraps a context window and user question into a grounded
// prompt for a completion provider.
func BuildPrompt(question, contextText string) string {
	return "You are a helpful assistant. Use only the provided context. " +
		"If context is insufficient, clearly say what is missing.\n\n" +
		"Context:\n" + contextText + "\n\n" +
		"User Question:\n" + question + "\n\n" +
		"Answer:"
}
