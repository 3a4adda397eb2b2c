/*
Package search ranks catalog items against a request.

Semantic ranking scores every catalog embedding by cosine similarity to the
query vector. A bleve BM25 index over item names and tags backs keyword
lookup and the optional hybrid mode, which fuses both scores.
*/
package search

import "github.com/khanglvm/gift-hub/internal/catalog"

// DefaultPoolSize is the number of ranked candidates handed to bundling.
const DefaultPoolSize = 15

// Candidate is a catalog item scored for one request.
type Candidate struct {
	catalog.Item

	// Score is the relevance score; higher is more relevant.
	Score float64 `json:"score"`

	// Rank is the 1-based position in the ranked list.
	Rank int `json:"rank"`

	// Position is the item's index in the catalog, used for stable ties.
	Position int `json:"-"`
}
