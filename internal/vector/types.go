// Package vector provides an exact-scan vector store with a JSON snapshot.
package vector

import "errors"

// ErrDimensionMismatch is returned when an upsert carries embeddings whose
// dimension does not match the store's learned dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Metadata keys attached to every indexed chunk.
const (
	MetaSourcePath = "source_path"
	MetaChunkIndex = "chunk_index"
)

// Record is a stored vector with its originating text and metadata.
type Record struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding"`
	Metadata  map[string]string `json:"metadata"`
}

// Result is a read-only projection of a Record scored against a query.
// It is derived per search and never persisted.
type Result struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// snapshot is the serialized form of the store.
type snapshot struct {
	Dimension int      `json:"dimension"`
	Records   []Record `json:"records"`
}
