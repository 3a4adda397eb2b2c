package search

import (
	"context"
	"sort"

	"github.com/khanglvm/gift-hub/internal/catalog"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	SemanticWeight float64
	KeywordWeight  float64
}

// DefaultFusionConfig provides balanced fusion (70% semantic, 30% keyword).
var DefaultFusionConfig = FusionConfig{
	SemanticWeight: 0.7,
	KeywordWeight:  0.3,
}

// HybridRanker fuses min-max normalized cosine and BM25 scores.
type HybridRanker struct {
	Catalog *catalog.Catalog
	Index   *KeywordIndex
	Fusion  FusionConfig
}

// Rank implements Ranker.
func (h *HybridRanker) Rank(_ context.Context, query []float32, text string, k int) ([]Candidate, error) {
	if k <= 0 {
		k = DefaultPoolSize
	}

	semanticResults := Rank(query, h.Catalog, k*2)

	bm25Results, err := h.Index.SearchBM25(text, k*2)
	if err != nil {
		return nil, err
	}

	// Both pools go through min-max so neither scale dominates the weights.
	fused := fuseScores(normalizeScores(semanticResults), normalizeScores(bm25Results), h.Fusion)

	// Sort by combined score, ties by catalog order.
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].Position < fused[j].Position
	})

	if len(fused) > k {
		fused = fused[:k]
	}
	for i := range fused {
		fused[i].Rank = i + 1
	}
	return fused, nil
}

// fuseScores combines semantic and keyword results using weighted fusion.
// An item found by only one side keeps that side's weighted score.
func fuseScores(semanticResults, keywordResults []Candidate, config FusionConfig) []Candidate {
	byPosition := make(map[int]*Candidate, len(semanticResults)+len(keywordResults))
	order := make([]int, 0, len(semanticResults)+len(keywordResults))

	for _, result := range semanticResults {
		c := result
		c.Score = config.SemanticWeight * result.Score
		byPosition[c.Position] = &c
		order = append(order, c.Position)
	}

	for _, result := range keywordResults {
		if existing, ok := byPosition[result.Position]; ok {
			existing.Score += config.KeywordWeight * result.Score
			continue
		}
		c := result
		c.Score = config.KeywordWeight * result.Score
		byPosition[c.Position] = &c
		order = append(order, c.Position)
	}

	fused := make([]Candidate, 0, len(order))
	for _, pos := range order {
		fused = append(fused, *byPosition[pos])
	}
	return fused
}

// normalizeScores normalizes scores to [0, 1] range.
func normalizeScores(results []Candidate) []Candidate {
	if len(results) == 0 {
		return results
	}

	minScore := results[0].Score
	maxScore := results[0].Score

	for _, result := range results {
		if result.Score < minScore {
			minScore = result.Score
		}
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}

	// Avoid division by zero - when all scores are equal, set all to 1.0
	normalized := make([]Candidate, len(results))
	for i, result := range results {
		normalized[i] = result
		if maxScore == minScore {
			normalized[i].Score = 1.0
		} else {
			normalized[i].Score = (result.Score - minScore) / (maxScore - minScore)
		}
	}

	return normalized
}
