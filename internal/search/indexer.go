package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/khanglvm/gift-hub/internal/catalog"
)

// KeywordIndex is an in-memory bleve index over a catalog.
// Document ids are catalog positions so hits map straight back to items.
// The index is written once in NewKeywordIndex and only read afterwards.
type KeywordIndex struct {
	bleveIndex bleve.Index
	catalog    *catalog.Catalog
}

// NewKeywordIndex indexes every item's name and tags.
func NewKeywordIndex(cat *catalog.Catalog) (*KeywordIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := index.NewBatch()
	for i := 0; i < cat.Len(); i++ {
		it := cat.Item(i)
		doc := map[string]interface{}{
			"name": it.Name,
			"tags": it.Tags,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index item %d: %w", it.ID, err)
		}
	}

	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to batch index items: %w", err)
	}

	return &KeywordIndex{bleveIndex: index, catalog: cat}, nil
}

// buildIndexMapping creates the bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	itemMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	itemMapping.AddFieldMappingsAt("name", nameFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	itemMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", itemMapping)

	return indexMapping
}

// Count returns the number of indexed items.
func (k *KeywordIndex) Count() (uint64, error) {
	docCount, err := k.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return docCount, nil
}

// Close closes the index and releases resources.
func (k *KeywordIndex) Close() error {
	if k.bleveIndex != nil {
		return k.bleveIndex.Close()
	}
	return nil
}

// buildMatchQuery creates a match query for BM25 search.
func buildMatchQuery(searchText string) query.Query {
	return bleve.NewMatchQuery(searchText)
}
