package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcache/ragcache/internal/vector"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestChunkText(t *testing.T) {
	t.Run("normalizes whitespace", func(t *testing.T) {
		chunks := ChunkText("hello\n\n  world\t!", 100, 10)
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world !", chunks[0])
	})

	t.Run("empty text yields no chunks", func(t *testing.T) {
		assert.Nil(t, ChunkText("", 100, 10))
		assert.Nil(t, ChunkText("  \n\t  ", 100, 10))
	})

	t.Run("splits with overlap", func(t *testing.T) {
		text := strings.Repeat("abcde ", 20) // 120 chars normalized to 119
		chunks := ChunkText(text, 50, 10)

		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 50)
		}
		// Consecutive chunks share the overlap region.
		first := chunks[0]
		second := chunks[1]
		assert.Equal(t, first[len(first)-10:], second[:10])
	})

	t.Run("overlap at or above chunk size is clamped", func(t *testing.T) {
		text := strings.Repeat("x", 100)
		chunks := ChunkText(text, 20, 20)

		// Clamped overlap still advances the scan.
		require.NotEmpty(t, chunks)
		assert.Less(t, len(chunks), 50)
	})

	t.Run("short text is a single chunk", func(t *testing.T) {
		chunks := ChunkText("tiny", 500, 50)
		require.Len(t, chunks, 1)
		assert.Equal(t, "tiny", chunks[0])
	})
}

func TestCollectDocuments(t *testing.T) {
	t.Run("missing data dir yields empty", func(t *testing.T) {
		paths, err := CollectDocuments(Options{DataDir: filepath.Join(t.TempDir(), "nope")})
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("filters by extension and sorts", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.md", "beta")
		writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, "skip.bin", "binary")
		writeFile(t, dir, "nested/c.rst", "gamma")

		paths, err := CollectDocuments(Options{DataDir: dir})
		require.NoError(t, err)
		require.Len(t, paths, 3)

		assert.Equal(t, "a.txt", filepath.Base(paths[0]))
		assert.Equal(t, "b.md", filepath.Base(paths[1]))
		assert.Equal(t, "c.rst", filepath.Base(paths[2]))
	})

	t.Run("honors ignore patterns", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "keep.md", "keep")
		writeFile(t, dir, "drafts/skip.md", "skip")

		paths, err := CollectDocuments(Options{
			DataDir:        dir,
			IgnorePatterns: []string{"drafts/"},
		})
		require.NoError(t, err)
		require.Len(t, paths, 1)
		assert.Equal(t, "keep.md", filepath.Base(paths[0]))
	})

	t.Run("honors max file size", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "small.txt", "ok")
		writeFile(t, dir, "big.txt", strings.Repeat("x", 2048))

		paths, err := CollectDocuments(Options{DataDir: dir, MaxFileSize: 1024})
		require.NoError(t, err)
		require.Len(t, paths, 1)
		assert.Equal(t, "small.txt", filepath.Base(paths[0]))
	})
}

func TestBuildChunks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "The capital of France is Paris. "+strings.Repeat("More context. ", 50))

	chunks, err := BuildChunks(Options{
		DataDir:      dir,
		ChunkSize:    100,
		ChunkOverlap: 20,
	})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	seen := make(map[string]bool)
	for i, c := range chunks {
		assert.NotEmpty(t, c.ID)
		assert.False(t, seen[c.ID], "chunk ids must be unique")
		seen[c.ID] = true

		assert.Contains(t, c.Metadata[vector.MetaSourcePath], "doc.md")
		assert.NotEmpty(t, c.Metadata[vector.MetaChunkIndex])
		if i == 0 {
			assert.Contains(t, c.Text, "capital of France")
		}
	}
}

func TestChunkIDStability(t *testing.T) {
	assert.Equal(t, chunkID("docs/a.md", 0, "hello"), chunkID("docs/a.md", 0, "hello"))
	assert.NotEqual(t, chunkID("docs/a.md", 0, "hello"), chunkID("docs/a.md", 1, "hello"))
	assert.NotEqual(t, chunkID("docs/a.md", 0, "hello"), chunkID("docs/b.md", 0, "hello"))
}
