package ingest

import "strings"

// ChunkText whitespace-normalizes text and splits it into fixed-size
// character chunks with overlap. An overlap at or above the chunk size
// is clamped to a quarter of the chunk size so the scan always advances.
func ChunkText(text string, chunkSize, overlap int) []string {
	clean := strings.Join(strings.Fields(text), " ")
	if clean == "" {
		return nil
	}

	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	runes := []rune(clean)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}

	return chunks
}
