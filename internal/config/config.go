// Package config handles configuration loading and validation for ragcache.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config represents the complete ragcache configuration.
type Config struct {
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Store      StoreConfig      `mapstructure:"store"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Ignore     []string         `mapstructure:"ignore"`
}

// EmbeddingsConfig configures the embedding model.
type EmbeddingsConfig struct {
	// Model selects the embedding model. Unrecognized values fall back
	// to the default hashing model rather than failing startup.
	Model     string            `mapstructure:"model"`
	Dimension int               `mapstructure:"dimension"`
	OpenAI    OpenAIEmbedConfig `mapstructure:"openai"`
}

// OpenAIEmbedConfig configures OpenAI embeddings.
type OpenAIEmbedConfig struct {
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
}

// StoreConfig configures the vector store snapshot.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// IngestConfig configures document ingestion.
type IngestConfig struct {
	DataDir      string `mapstructure:"data_dir"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	MaxFileSize  int    `mapstructure:"max_file_size"`
	MaxFileCount int    `mapstructure:"max_file_count"`
}

// RetrievalConfig configures retrieval behavior.
type RetrievalConfig struct {
	TopK            int `mapstructure:"top_k"`
	MaxContextChars int `mapstructure:"max_context_chars"`
}

// CacheConfig configures the semantic cache.
type CacheConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	Backend             string  `mapstructure:"backend"`
	RedisURL            string  `mapstructure:"redis_url"`
	Namespace           string  `mapstructure:"namespace"`
	TTLSeconds          int     `mapstructure:"ttl_seconds"`
	MaxEntries          int     `mapstructure:"max_entries"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	SemanticScanLimit   int     `mapstructure:"semantic_scan_limit"`
}

// Global configuration instance
var cfg *Config

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Model:     DefaultEmbeddingModel,
			Dimension: DefaultEmbeddingDimension,
			OpenAI: OpenAIEmbedConfig{
				Model: DefaultOpenAIEmbedModel,
			},
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Ingest: IngestConfig{
			DataDir:      DefaultDataDir,
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			MaxFileSize:  DefaultMaxFileSize,
			MaxFileCount: DefaultMaxFileCount,
		},
		Retrieval: RetrievalConfig{
			TopK:            DefaultTopK,
			MaxContextChars: DefaultMaxContextChars,
		},
		Cache: CacheConfig{
			Enabled:             true,
			Backend:             DefaultCacheBackend,
			RedisURL:            DefaultRedisURL,
			Namespace:           DefaultCacheNamespace,
			TTLSeconds:          DefaultCacheTTLSeconds,
			MaxEntries:          DefaultCacheMaxEntries,
			SimilarityThreshold: DefaultSimilarityThreshold,
			SemanticScanLimit:   DefaultSemanticScanLimit,
		},
		Ignore: DefaultIgnorePatterns(),
	}
}

// Load reads configuration from file and environment variables.
func Load(configFile string) error {
	// Set defaults
	setDefaults()

	// Set config file if specified
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(DefaultConfigDir())
		viper.AddConfigPath(".")

		// Also check for .ragcacherc.yaml in current directory and parents
		if rcPath := findRCFile(); rcPath != "" {
			viper.SetConfigFile(rcPath)
		}
	}

	// Environment variables
	viper.SetEnvPrefix("RAGCACHE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Debug("Loaded config from", "file", viper.ConfigFileUsed())
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	// Load API keys from environment if not in config
	loadAPIKeysFromEnv()

	return nil
}

// setDefaults sets default values in viper.
func setDefaults() {
	// Embeddings
	viper.SetDefault("embeddings.model", DefaultEmbeddingModel)
	viper.SetDefault("embeddings.dimension", DefaultEmbeddingDimension)
	viper.SetDefault("embeddings.openai.model", DefaultOpenAIEmbedModel)

	// Vector store
	viper.SetDefault("store.path", DefaultStorePath())

	// Ingestion
	viper.SetDefault("ingest.data_dir", DefaultDataDir)
	viper.SetDefault("ingest.chunk_size", DefaultChunkSize)
	viper.SetDefault("ingest.chunk_overlap", DefaultChunkOverlap)
	viper.SetDefault("ingest.max_file_size", DefaultMaxFileSize)
	viper.SetDefault("ingest.max_file_count", DefaultMaxFileCount)

	// Retrieval
	viper.SetDefault("retrieval.top_k", DefaultTopK)
	viper.SetDefault("retrieval.max_context_chars", DefaultMaxContextChars)

	// Cache
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", DefaultCacheBackend)
	viper.SetDefault("cache.redis_url", DefaultRedisURL)
	viper.SetDefault("cache.namespace", DefaultCacheNamespace)
	viper.SetDefault("cache.ttl_seconds", DefaultCacheTTLSeconds)
	viper.SetDefault("cache.max_entries", DefaultCacheMaxEntries)
	viper.SetDefault("cache.similarity_threshold", DefaultSimilarityThreshold)
	viper.SetDefault("cache.semantic_scan_limit", DefaultSemanticScanLimit)

	// Ignore patterns
	viper.SetDefault("ignore", DefaultIgnorePatterns())
}

// findRCFile searches for .ragcacherc.yaml starting from current directory.
func findRCFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		rcPath := filepath.Join(dir, ".ragcacherc.yaml")
		if _, err := os.Stat(rcPath); err == nil {
			return rcPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// loadAPIKeysFromEnv loads API keys from environment variables if not already set.
func loadAPIKeysFromEnv() {
	if cfg.Embeddings.OpenAI.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Embeddings.OpenAI.APIKey = key
		}
	}
}

// ConfigFilePath returns the path of the loaded config file, or empty string if none.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
