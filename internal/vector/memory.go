package vector

import (
	"context"
	"fmt"
	"sync"
)

// MemoryIndex is an in-memory vector index using brute-force cosine search.
type MemoryIndex struct {
	dimensions int
	ids        []int
	vectors    [][]float64
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
// Zero is allowed: a fitted model may have an empty vocabulary.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		ids:        make([]int, 0),
		vectors:    make([][]float64, 0),
	}, nil
}

// Add appends vectors with the given IDs.
func (m *MemoryIndex) Add(ctx context.Context, ids []int, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range vectors {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), m.dimensions)
		}
	}
	for i, id := range ids {
		vec := make([]float64, m.dimensions)
		copy(vec, vectors[i])
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
	}
	return nil
}

// Search returns the top-k vectors by cosine similarity; ties keep insertion order.
func (m *MemoryIndex) Search(ctx context.Context, query []float64, k int) ([]*VectorResult, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	top := TopK(query, m.vectors, k)
	result := make([]*VectorResult, len(top))
	for i, s := range top {
		result[i] = &VectorResult{ID: m.ids[s.Index], Score: s.Score}
	}
	return result, nil
}

// Reset drops all vectors and switches to a new dimension.
func (m *MemoryIndex) Reset(dimensions int) error {
	if dimensions < 0 {
		return fmt.Errorf("dimensions must not be negative")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = dimensions
	m.ids = make([]int, 0)
	m.vectors = make([][]float64, 0)
	return nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Dimensions returns the vector width.
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}
