package search

import (
	"testing"

	"github.com/khanglvm/gift-hub/internal/catalog"
)

func keywordCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	items := []catalog.Item{
		{ID: 11, Name: "Gourmet Coffee Bag", Price: 15, Tags: []string{"drink", "coffee", "morning"}},
		{ID: 12, Name: "Yoga Mat", Price: 50, Tags: []string{"fitness", "yoga", "wellness"}},
		{ID: 13, Name: "Specialty Tea Collection", Price: 30, Tags: []string{"drink", "tea", "wellness"}},
	}
	vecs := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	cat, err := catalog.New(items, vecs, "test")
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	return cat
}

func TestNewKeywordIndex(t *testing.T) {
	idx, err := NewKeywordIndex(keywordCatalog(t))
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("failed to get count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 indexed items, got %d", count)
	}
}

func TestSearchBM25(t *testing.T) {
	idx, err := NewKeywordIndex(keywordCatalog(t))
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	results, err := idx.SearchBM25("coffee", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != 11 {
		t.Fatalf("expected only the coffee bag, got %+v", results)
	}
	if results[0].Position != 0 || results[0].Rank != 1 {
		t.Errorf("unexpected position/rank: %+v", results[0])
	}

	results, err = idx.SearchBM25("wellness", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 wellness items, got %d", len(results))
	}

	results, err = idx.SearchBM25("submarine", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
