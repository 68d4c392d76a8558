package vectorindex

import (
	"fmt"
	"sort"

	"ytlearn/internal/domain"
)

// Index is an exact nearest-neighbor structure over a fixed set of vectors.
// It is built once per session and never mutated, so searches need no
// locking. Corpora are tens of chunks, so brute force beats any approximate
// structure and keeps results deterministic.
type Index struct {
	dimension int
	vectors   [][]float32
}

// Hit is one search result: a position in the build-time vector sequence and
// its squared Euclidean distance to the query.
type Hit struct {
	Index    int
	Distance float64
}

// Build constructs an index over the given vectors. The input must be
// non-empty and dimensionally consistent.
func Build(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length vectors", domain.ErrEmptyIndex)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return &Index{dimension: dim, vectors: vectors}, nil
}

// Size returns the number of indexed vectors.
func (ix *Index) Size() int { return len(ix.vectors) }

// Dimension returns the vector dimension the index was built with.
func (ix *Index) Dimension() int { return ix.dimension }

// Search returns the min(k, size) nearest vectors to query, ordered by
// non-decreasing squared Euclidean distance, ties broken by ascending
// position.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", k)
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query has dimension %d, want %d", len(query), ix.dimension)
	}
	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Index: i, Distance: squaredDistance(query, v)}
	}
	return rank(hits, k), nil
}

// Representative ranks all vectors by squared distance to their centroid and
// returns the min(k, size) closest. It anchors "most representative of the
// whole" when there is no query to anchor relevance, which is how the
// ingestion summary picks its context.
func (ix *Index) Representative(k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", k)
	}
	centroid := make([]float64, ix.dimension)
	for _, v := range ix.vectors {
		for j, x := range v {
			centroid[j] += float64(x)
		}
	}
	n := float64(len(ix.vectors))
	for j := range centroid {
		centroid[j] /= n
	}
	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		var sum float64
		for j, x := range v {
			d := float64(x) - centroid[j]
			sum += d * d
		}
		hits[i] = Hit{Index: i, Distance: sum}
	}
	return rank(hits, k), nil
}

func rank(hits []Hit, k int) []Hit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Index < hits[j].Index
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
