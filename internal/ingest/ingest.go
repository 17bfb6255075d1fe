// Package ingest collects documents and splits them into chunks for indexing.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/ragcache/ragcache/internal/vector"
)

// supportedExtensions are the document types eligible for ingestion.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".rst": true,
	".py":  true,
}

// SourceChunk is a bounded-length slice of a source document, the unit
// of indexing and retrieval.
type SourceChunk struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Options configures document collection and chunking.
type Options struct {
	// DataDir is the root directory to scan for documents.
	DataDir string

	// ChunkSize is the chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared between
	// consecutive chunks.
	ChunkOverlap int

	// MaxFileSize skips files larger than this many bytes (0 = no limit).
	MaxFileSize int64

	// MaxFileCount stops collection after this many files (0 = no limit).
	MaxFileCount int

	// IgnorePatterns are gitignore-style patterns to skip.
	IgnorePatterns []string
}

// Ignorer defines the interface for path pattern matching.
type Ignorer interface {
	MatchesPath(path string) bool
}

// combinedIgnorer checks a directory's .gitignore alongside configured patterns.
type combinedIgnorer struct {
	file     *gitignore.GitIgnore
	patterns *gitignore.GitIgnore
}

// MatchesPath returns true if the path matches any ignore pattern.
func (c *combinedIgnorer) MatchesPath(path string) bool {
	return c.file.MatchesPath(path) || c.patterns.MatchesPath(path)
}

// newIgnorer builds the ignore matcher for a data directory.
func newIgnorer(root string, patterns []string) Ignorer {
	compiled := gitignore.CompileIgnoreLines(patterns...)

	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gi, err := gitignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			log.Warn("Failed to parse .gitignore", "path", gitignorePath, "error", err)
		} else {
			return &combinedIgnorer{file: gi, patterns: compiled}
		}
	}

	return compiled
}

// CollectDocuments walks the data directory and returns the supported
// document paths in sorted order. A missing data directory yields an
// empty slice, not an error.
func CollectDocuments(opts Options) ([]string, error) {
	root, err := filepath.Abs(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir is not a directory: %s", root)
	}

	ignorer := newIgnorer(root, opts.IgnorePatterns)

	var paths []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if path != root && ignorer.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if ignorer.MatchesPath(rel) {
			return nil
		}
		if !supportedExtensions[filepath.Ext(path)] {
			return nil
		}

		if opts.MaxFileSize > 0 {
			fi, statErr := d.Info()
			if statErr != nil {
				return nil
			}
			if fi.Size() > opts.MaxFileSize {
				log.Debug("Skipping oversized file", "path", path, "size", fi.Size())
				return nil
			}
		}

		paths = append(paths, path)
		if opts.MaxFileCount > 0 && len(paths) >= opts.MaxFileCount {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk data dir: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// BuildChunks collects documents and splits each into overlapping chunks
// with stable content-derived ids and source metadata.
func BuildChunks(opts Options) ([]SourceChunk, error) {
	paths, err := CollectDocuments(opts)
	if err != nil {
		return nil, err
	}

	var chunks []SourceChunk
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Skipping unreadable file", "path", path, "error", err)
			continue
		}

		parts := ChunkText(string(data), opts.ChunkSize, opts.ChunkOverlap)
		for idx, part := range parts {
			chunks = append(chunks, SourceChunk{
				ID:   chunkID(path, idx, part),
				Text: part,
				Metadata: map[string]string{
					vector.MetaSourcePath: path,
					vector.MetaChunkIndex: strconv.Itoa(idx),
				},
			})
		}
	}

	log.Debug("Built chunks", "files", len(paths), "chunks", len(chunks))
	return chunks, nil
}

// chunkID derives a stable id from the source path, chunk index, and content.
func chunkID(path string, idx int, text string) string {
	raw := fmt.Sprintf("%s::%d::%s", filepath.ToSlash(path), idx, text)
	return fmt.Sprintf("%016x", xxhash.Sum64String(raw))
}
