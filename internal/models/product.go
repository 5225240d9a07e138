package models

// Product is a single catalog item. Products are immutable once constructed;
// the catalog and the semantic search service are their only sources.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       int     `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
	Rating      float64 `json:"rating,omitempty"`
	IsPopular   bool    `json:"isPopular,omitempty"`

	// Similarity is only set on results returned by the semantic search
	// service; local text search leaves it zero.
	Similarity float64 `json:"similarity,omitempty"`
}
