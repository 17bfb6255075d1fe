package embeddings

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// tokenPattern matches lowercase alphanumeric/underscore token runs.
var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// HashingModel implements a deterministic feature-hashing embedding.
// Each token hashes to a bucket and a sign; token counts accumulate into
// the buckets and the result is L2-normalized. It performs no I/O and
// holds no mutable state, so it is safe for unsynchronized concurrent use.
type HashingModel struct {
	dimension int
}

// NewHashingModel creates a hashing embedding model of the given dimension.
func NewHashingModel(dimension int) (*HashingModel, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be > 0, got %d", dimension)
	}
	return &HashingModel{dimension: dimension}, nil
}

// Embed generates an embedding for the given text.
// Text with no tokens yields the zero vector unmodified.
func (m *HashingModel) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, m.dimension)

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec, nil
	}

	for _, token := range tokens {
		h := xxhash.Sum64String(token)
		idx := h % uint64(m.dimension)
		if (h>>32)&1 == 0 {
			vec[idx]++
		} else {
			vec[idx]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec, nil
	}

	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// EmbedBatch maps Embed over the input texts, preserving order.
func (m *HashingModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimension returns the embedding dimension.
func (m *HashingModel) Dimension() int {
	return m.dimension
}

// ModelName returns the model name.
func (m *HashingModel) ModelName() string {
	return ModelHashing
}
