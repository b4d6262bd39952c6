package models

// EntityType selects which entity lists a search covers.
type EntityType string

const (
	// EntityAll searches books, authors, and categories and merges the lists.
	EntityAll EntityType = "all"
	// EntityBooks searches book titles and authors.
	EntityBooks EntityType = "books"
	// EntityAuthors searches unique author names.
	EntityAuthors EntityType = "authors"
	// EntityCategories searches unique genre names.
	EntityCategories EntityType = "categories"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityAll, EntityBooks, EntityAuthors, EntityCategories:
		return true
	}
	return false
}

// SearchFilters are structured pre-filters applied (AND-combined) over the
// corpus before any fuzzy scoring. Items failing any filter are excluded
// from the index build entirely.
type SearchFilters struct {
	Genres      []string `json:"genres,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
	InStockOnly bool     `json:"in_stock_only,omitempty"`
}

// SearchRequest is a search invocation over one corpus snapshot.
type SearchRequest struct {
	Query string     `json:"query"`
	Type  EntityType `json:"type,omitempty"`
	// Threshold overrides the configured fuzzy threshold when set.
	Threshold *float64       `json:"threshold,omitempty"`
	Filters   *SearchFilters `json:"filters,omitempty"`
	Page      int            `json:"page,omitempty"`
	PageSize  int            `json:"page_size,omitempty"`
	UserEmail string         `json:"user_email,omitempty"`
}

// SearchResult is one externally visible hit: a book, author, or category.
// Results are never mutated after creation.
type SearchResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Subtitle    string  `json:"subtitle,omitempty"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	URL         string  `json:"url,omitempty"`
	Score       float64 `json:"score"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results    []*SearchResult `json:"results"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	HasMore    bool            `json:"has_more"`
	QueryTime  int64           `json:"query_time_ms"`
	Query      string          `json:"query"`
	// SuggestedKeywords are refinement hints from the suggestion
	// collaborator, attached after the core has produced results.
	SuggestedKeywords []string `json:"suggested_keywords,omitempty"`
}

// SearchHistoryItem records one search performed by a user.
type SearchHistoryItem struct {
	ID          string `json:"id"`
	Query       string `json:"query"`
	Timestamp   int64  `json:"timestamp"` // unix milliseconds
	UserEmail   string `json:"user_email,omitempty"`
	SearchType  string `json:"search_type,omitempty"`
	ResultCount int    `json:"result_count"`
}

// SearchAnalytics records per-search metrics for monitoring.
type SearchAnalytics struct {
	ID               string `json:"id"`
	Query            string `json:"query"`
	ResultCount      int    `json:"result_count"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	UserEmail        string `json:"user_email,omitempty"`
	SearchType       string `json:"search_type"`
	HadResults       bool   `json:"had_results"`
	Timestamp        int64  `json:"timestamp"` // unix milliseconds
}

// PopularSearch is an aggregated query with its occurrence count.
type PopularSearch struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}
