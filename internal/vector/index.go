// Package vector provides cosine similarity, top-k selection and an in-memory
// vector index.
package vector

import "context"

// VectorIndex stores vectors by integer id and answers top-k similarity queries.
type VectorIndex interface {
	Add(ctx context.Context, ids []int, vectors [][]float64) error
	Search(ctx context.Context, query []float64, k int) ([]*VectorResult, error)
	Reset(dimensions int) error
	Size() int
	Dimensions() int
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	ID    int
	Score float64 // cosine similarity in [0, 1]
}
