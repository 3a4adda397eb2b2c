/*
Package catalog holds the gift inventory and its embeddings.

A Catalog is built once per process (from a Source plus an encoder, or from
a persisted snapshot) and is shared read-only by every request afterwards.
items[i] and embeddings[i] always describe the same gift.
*/
package catalog

import "strings"

// Item is a single gift in the inventory.
type Item struct {
	ID    int      `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Price float64  `json:"price" yaml:"price"`
	Tags  []string `json:"tags" yaml:"tags"`
}

// SearchText is the text an item is embedded from: its name followed by its tags.
func (it Item) SearchText() string {
	if len(it.Tags) == 0 {
		return it.Name
	}
	return it.Name + " " + strings.Join(it.Tags, " ")
}

// HasTag reports whether the item carries tag (case-insensitive).
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
