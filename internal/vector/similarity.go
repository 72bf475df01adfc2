package vector

import (
	"math"
	"sort"
)

// Scored pairs a corpus position with its similarity to a query.
type Scored struct {
	Index int
	Score float64
}

// InnerProduct returns the inner product of two vectors. Mismatched or empty
// vectors give 0.
func InnerProduct(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b clamped to [0, 1].
// A zero-norm vector on either side gives 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, InnerProduct(a, b)/(na*nb)))
}

// TopK scores every corpus vector against query and returns the best k,
// highest score first, equal scores by ascending index. k is clamped to the
// corpus size; k <= 0 returns nothing.
func TopK(query []float64, corpus [][]float64, k int) []Scored {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}
	scores := make([]Scored, len(corpus))
	for i, vec := range corpus {
		scores[i] = Scored{Index: i, Score: Cosine(query, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k]
}

// BestMatch returns the single best corpus vector for query. ok is false when
// the corpus is empty.
func BestMatch(query []float64, corpus [][]float64) (best Scored, ok bool) {
	top := TopK(query, corpus, 1)
	if len(top) == 0 {
		return Scored{Index: -1}, false
	}
	return top[0], true
}
