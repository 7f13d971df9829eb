// Package cosine ranks stored vectors by cosine similarity to a query.
// It backs the local vector index implementations.
package cosine

import (
	"math"
	"sort"
)

// Similarity returns the cosine similarity of a and b, or 0 when either
// vector has zero magnitude. Vectors must have equal length.
func Similarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Hit is a scored position in the searched slice.
type Hit struct {
	Index int
	Score float64
}

// TopK returns the k best matches of query among vectors, highest score
// first. Equal scores keep insertion order.
func TopK(query []float32, vectors [][]float32, k int) []Hit {
	hits := make([]Hit, 0, len(vectors))
	for i, v := range vectors {
		if len(v) != len(query) {
			continue
		}
		hits = append(hits, Hit{Index: i, Score: Similarity(query, v)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
