// Package embeddings provides text embedding models for retrieval and caching.
package embeddings

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ragcache/ragcache/internal/config"
)

// Known model names selectable via configuration.
const (
	ModelHashing = "hashing-embed-v1"
	ModelOpenAI  = "openai"
)

// Service defines the interface for embedding models.
type Service interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension for this model.
	Dimension() int

	// ModelName returns the model name.
	ModelName() string
}

// Known OpenAI model dimensions
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// GetModelDimensions returns the known dimensions for a model, or 0 if unknown.
func GetModelDimensions(model string) int {
	return modelDimensions[model]
}

// NewService creates an embedding model based on the configuration.
// Unrecognized model names fall back to the default hashing model so a
// misconfigured model never fails startup; an invalid dimension does.
func NewService(cfg *config.Config) (Service, error) {
	switch strings.ToLower(cfg.Embeddings.Model) {
	case ModelHashing:
		return NewHashingModel(cfg.Embeddings.Dimension)
	case ModelOpenAI:
		svc, err := NewOpenAIService(
			cfg.Embeddings.OpenAI.APIKey,
			cfg.Embeddings.OpenAI.Model,
			cfg.Embeddings.OpenAI.BaseURL,
			cfg.Embeddings.OpenAI.Dimensions,
		)
		if err != nil {
			log.Warn("OpenAI embeddings unavailable, falling back to hashing model", "error", err)
			return NewHashingModel(cfg.Embeddings.Dimension)
		}
		return svc, nil
	default:
		log.Debug("Unknown embedding model, using hashing fallback", "model", cfg.Embeddings.Model)
		return NewHashingModel(cfg.Embeddings.Dimension)
	}
}
