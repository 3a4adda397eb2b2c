package search

import (
	"context"
	"math"
	"sort"

	"github.com/khanglvm/gift-hub/internal/catalog"
)

// Ranker produces the top-k candidates for a request.
type Ranker interface {
	Rank(ctx context.Context, query []float32, text string, k int) ([]Candidate, error)
}

// cosineSimilarity computes cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every catalog item against query and returns the k best,
// ordered by descending similarity. Ties keep catalog order. k <= 0 or
// k > catalog size returns every item.
func Rank(query []float32, cat *catalog.Catalog, k int) []Candidate {
	n := cat.Len()
	all := make([]Candidate, n)
	for i := 0; i < n; i++ {
		all[i] = Candidate{
			Item:     cat.Item(i),
			Score:    cosineSimilarity(query, cat.Embedding(i)),
			Position: i,
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	if k > 0 && k < len(all) {
		all = all[:k]
	}
	for i := range all {
		all[i].Rank = i + 1
	}
	return all
}

// SemanticRanker ranks purely by cosine similarity.
type SemanticRanker struct {
	Catalog *catalog.Catalog
}

// Rank implements Ranker. The query text is ignored.
func (s *SemanticRanker) Rank(_ context.Context, query []float32, _ string, k int) ([]Candidate, error) {
	return Rank(query, s.Catalog, k), nil
}
