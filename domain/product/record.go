// Package product holds the search domain types. Records are opaque: only the
// product attribute is ever interpreted, and only by the store when filtering.
package product

// Record is one stored item, keyed by attribute name.
type Record map[string]interface{}

// SearchResult is the outcome of a product search.
type SearchResult struct {
	Product string   `json:"product"`
	Count   int      `json:"count"`
	Items   []Record `json:"items"`
}

// NewSearchResult builds a result whose count always matches its items.
// Items is never nil so it serializes as an empty JSON array.
func NewSearchResult(product string, items []Record) *SearchResult {
	if items == nil {
		items = []Record{}
	}
	return &SearchResult{
		Product: product,
		Count:   len(items),
		Items:   items,
	}
}
