package search

import (
	"fmt"
	"slices"
	"sync"

	"github.com/coder/hnsw"
	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/doc2vec"
)

// Index is an approximate nearest-neighbour index over tag vectors.
type Index struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	vectors map[string][]float32
	dim     int
}

// NewIndex creates an empty index for vectors of length dim.
func NewIndex(dim int) *Index {
	x := &Index{
		vectors: make(map[string][]float32),
		dim:     dim,
	}
	x.graph = x.newGraph()
	return x
}

// FromModel indexes every tag vector of a model.
func FromModel(m *doc2vec.Model) (*Index, error) {
	if m == nil {
		return nil, ErrModelRequired
	}
	if !m.HasDocVectors() {
		return nil, ErrNoDocVectors
	}
	idx := NewIndex(m.Config().VectorSize)
	nodes := make([]hnsw.Node[string], 0, len(m.Tags()))
	for tag, vec := range m.DocVectors() {
		idx.vectors[tag] = vec
		nodes = append(nodes, hnsw.MakeNode(tag, vec))
	}
	idx.graph.Add(nodes...)
	return idx, nil
}

// Add inserts or replaces the vector of a tag.
func (x *Index) Add(tag string, vector []float32) error {
	if len(vector) != x.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.dim)
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	// Add replaces an existing node with the same key, except when that
	// node is the only one: the graph is left without an entry point, so
	// start over with a fresh graph.
	if _, ok := x.vectors[tag]; ok && len(x.vectors) == 1 {
		x.graph = x.newGraph()
	}
	x.vectors[tag] = vector
	x.graph.Add(hnsw.MakeNode(tag, vector))
	return nil
}

func (x *Index) newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.Distance = hnsw.CosineDistance
	return g
}

// Len returns the number of indexed tags.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.graph.Len()
}

// Nearest returns up to k tags closest to vector, highest cosine similarity first.
func (x *Index) Nearest(vector []float32, k int) ([]core.SimilarityMatch, error) {
	if len(vector) != x.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.dim)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.nearest(vector, k, ""), nil
}

// Similar returns up to k tags closest to the vector of tag, excluding tag itself.
func (x *Index) Similar(tag string, k int) ([]core.SimilarityMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	vector, ok := x.vectors[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}
	return x.nearest(vector, k, tag), nil
}

func (x *Index) nearest(vector []float32, k int, exclude string) []core.SimilarityMatch {
	if k <= 0 || x.graph.Len() == 0 {
		return nil
	}
	want := k
	if exclude != "" {
		want++
	}

	neighbors := x.graph.Search(vector, want)
	results := make([]core.SimilarityMatch, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Key == exclude {
			continue
		}
		// CosineDistance is 1 - cosine similarity.
		results = append(results, core.SimilarityMatch{
			Tag:   n.Key,
			Score: 1 - x.graph.Distance(vector, n.Value),
		})
	}

	slices.SortStableFunc(results, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
