package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
)

// SearchBM25 performs BM25 keyword search over item names and tags.
func (k *KeywordIndex) SearchBM25(text string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 10
	}

	searchRequest := bleve.NewSearchRequestOptions(buildMatchQuery(text), limit, 0, false)

	results, err := k.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return k.convertBleveResults(results)
}

// convertBleveResults maps bleve hits back to catalog candidates.
func (k *KeywordIndex) convertBleveResults(results *bleve.SearchResult) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(results.Hits))

	for i, hit := range results.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil || pos < 0 || pos >= k.catalog.Len() {
			return nil, fmt.Errorf("index returned unknown document %q", hit.ID)
		}
		candidates = append(candidates, Candidate{
			Item:     k.catalog.Item(pos),
			Score:    hit.Score,
			Rank:     i + 1,
			Position: pos,
		})
	}

	return candidates, nil
}
