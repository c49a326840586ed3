package db

// VectorQuery is the input for the baseline nearest-neighbor search.
type VectorQuery struct {
	Vector []float32
	Model  string
	K      int
}

// FilteredVectorQuery is the input for the price-aware search variant.
// Brand is an exact match; nil price bounds are open-ended.
type FilteredVectorQuery struct {
	VectorQuery
	PriceMin *float64
	PriceMax *float64
	Brand    string
}

// SearchResult is the output of a search operation, ordered by descending
// similarity.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single catalog row from a search. HasScore is false for
// legacy rows indexed without a score attribute.
type SearchEntry struct {
	Key      string
	Score    float64
	HasScore bool
	Fields   map[string]string
}
