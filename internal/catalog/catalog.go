package catalog

import (
	"errors"
	"fmt"
)

// ErrMisaligned is returned when items and embeddings cannot be paired by index.
var ErrMisaligned = errors.New("catalog items and embeddings are misaligned")

// Catalog is an immutable, index-aligned set of items and embeddings.
type Catalog struct {
	items      []Item
	embeddings [][]float32
	modelID    string
	dim        int
}

// New validates and builds a catalog. The slices are copied, so later
// mutation by the caller does not leak into the catalog.
func New(items []Item, embeddings [][]float32, modelID string) (*Catalog, error) {
	if len(items) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d items, %d embeddings", ErrMisaligned, len(items), len(embeddings))
	}

	seen := make(map[int]struct{}, len(items))
	dim := 0
	for i, it := range items {
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d", it.ID)
		}
		seen[it.ID] = struct{}{}

		if it.Price < 0 {
			return nil, fmt.Errorf("item %d: negative price %.2f", it.ID, it.Price)
		}
		if len(embeddings[i]) == 0 {
			return nil, fmt.Errorf("%w: item %d has an empty embedding", ErrMisaligned, it.ID)
		}
		if i == 0 {
			dim = len(embeddings[i])
		} else if len(embeddings[i]) != dim {
			return nil, fmt.Errorf("%w: item %d has %d dimensions, expected %d",
				ErrMisaligned, it.ID, len(embeddings[i]), dim)
		}
	}

	c := &Catalog{
		items:      make([]Item, len(items)),
		embeddings: make([][]float32, len(embeddings)),
		modelID:    modelID,
		dim:        dim,
	}
	for i, it := range items {
		it.Tags = append([]string(nil), it.Tags...)
		c.items[i] = it
		c.embeddings[i] = append([]float32(nil), embeddings[i]...)
	}
	return c, nil
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Item returns the item at index i.
func (c *Catalog) Item(i int) Item {
	return c.items[i]
}

// Embedding returns the embedding at index i. Callers must not modify it.
func (c *Catalog) Embedding(i int) []float32 {
	return c.embeddings[i]
}

// Items returns a copy of the item list in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup finds an item by id.
func (c *Catalog) Lookup(id int) (Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ModelID identifies the encoder that produced the embeddings.
func (c *Catalog) ModelID() string { return c.modelID }

// Dim is the embedding dimensionality (0 for an empty catalog).
func (c *Catalog) Dim() int { return c.dim }
