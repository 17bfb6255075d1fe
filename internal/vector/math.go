package vector

import "math"

// Cosine computes the cosine similarity between two vectors.
// Vectors of mismatched length and vectors with a zero norm score 0.0
// rather than raising, so degenerate inputs rank last instead of failing
// a whole search.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
