package config

import (
	"os"
	"path/filepath"
)

// Default configuration values
const (
	// Embedding defaults
	DefaultEmbeddingModel     = "hashing-embed-v1"
	DefaultEmbeddingDimension = 256
	DefaultOpenAIEmbedModel   = "text-embedding-3-small"

	// Ingestion defaults
	DefaultDataDir      = "data"
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultMaxFileSize  = 1 << 20 // 1MB
	DefaultMaxFileCount = 10000

	// Retrieval defaults
	DefaultTopK            = 4
	DefaultMaxContextChars = 3000

	// Cache defaults
	DefaultCacheBackend        = "memory"
	DefaultRedisURL            = "redis://localhost:6379/0"
	DefaultCacheNamespace      = "ragcache"
	DefaultCacheTTLSeconds     = 3600
	DefaultCacheMaxEntries     = 512
	DefaultSimilarityThreshold = 0.92
	DefaultSemanticScanLimit   = 50

	// Vector store
	DefaultStoreFileName = "vectors.json"
)

// DefaultIgnorePatterns returns the default list of file patterns to ignore
// during document ingestion.
func DefaultIgnorePatterns() []string {
	return []string{
		// Version control
		".git/",
		".svn/",
		".hg/",

		// Dependencies
		"node_modules/",
		"vendor/",
		".venv/",
		"venv/",

		// Build outputs
		"dist/",
		"build/",
		"target/",
		"__pycache__/",
		"*.pyc",

		// IDE/Editor
		".idea/",
		".vscode/",
		"*.swp",
		"*~",

		// Misc
		".DS_Store",
		"Thumbs.db",
		".env",
		".env.*",
		"*.log",
	}
}

// DefaultConfigDir returns the default configuration directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/ragcache"
	}
	return filepath.Join(home, ".config", "ragcache")
}

// DefaultStateDir returns the default state directory path.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share/ragcache"
	}
	return filepath.Join(home, ".local", "share", "ragcache")
}

// DefaultStorePath returns the default vector store snapshot path.
func DefaultStorePath() string {
	return filepath.Join(DefaultStateDir(), DefaultStoreFileName)
}
