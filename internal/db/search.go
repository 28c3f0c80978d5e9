package db

import "github.com/kailas-cloud/recsearch/internal/domain/search/plan"

// AggregateQuery is the input for a sorted, windowed listing.
type AggregateQuery struct {
	IndexName string
	Plan      *plan.Plan
	// Sort keys in priority order; drivers apply them as given.
	Sort   []plan.OrderKey
	Offset int
	Limit  int
	// Load lists the attributes returned per row.
	Load []string
}

// CountQuery is the input for counting the documents a plan matches.
type CountQuery struct {
	IndexName string
	Plan      *plan.Plan
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// IndexInfo is the subset of FT.INFO the service reports.
type IndexInfo struct {
	Name    string
	NumDocs int
	// Indexing is true while a background scan is still building the index.
	Indexing       bool
	PercentIndexed float64
}

// CheckScoped returns ErrUnscopedQuery unless p carries a tenant clause.
func CheckScoped(p *plan.Plan) error {
	if p == nil || !p.Scoped() {
		return ErrUnscopedQuery
	}
	return nil
}
