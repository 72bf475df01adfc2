package vector

import (
	"context"
	"testing"
)

func BenchmarkMemoryIndexSearch(b *testing.B) {
	idx, _ := NewMemoryIndex(300)
	ctx := context.Background()
	vecs := make([][]float64, 1000)
	ids := make([]int, 1000)
	for i := 0; i < 1000; i++ {
		vecs[i] = make([]float64, 300)
		vecs[i][0] = float64(i) / 1000
		vecs[i][i%300] += 0.5
		ids[i] = i
	}
	_ = idx.Add(ctx, ids, vecs)
	query := make([]float64, 300)
	query[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Search(ctx, query, 10)
	}
}
