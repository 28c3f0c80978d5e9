// Package plan compiles a filter model into an engine-agnostic query plan.
package plan

import (
	"math"

	"github.com/kailas-cloud/recsearch/internal/domain"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
)

// MatchMode selects the text representation a search clause targets.
type MatchMode string

// Search clause modes.
const (
	// Exact matches the whole value against the exact-term representation.
	Exact MatchMode = "exact"
	// Partial matches every token as a substring of the partial representation.
	Partial MatchMode = "partial"
)

// SearchClause is one free-text constraint.
type SearchClause struct {
	Field field.Name
	// Path is the index attribute the clause targets.
	Path string
	Mode MatchMode
	// Term is the trimmed caller term.
	Term string
	// Tokens are the lowercased searchable tokens of Term (Partial only).
	Tokens []string
}

// NumericRange is a closed or half-open numeric interval. Unbounded ends are infinite.
type NumericRange struct {
	Min          float64
	Max          float64
	MinExclusive bool
	MaxExclusive bool
}

// Contains reports whether v lies in the range.
func (r NumericRange) Contains(v float64) bool {
	if r.MinExclusive {
		if v <= r.Min {
			return false
		}
	} else if v < r.Min {
		return false
	}
	if r.MaxExclusive {
		return v < r.Max
	}
	return v <= r.Max
}

// Unbounded returns the range covering every value.
func Unbounded() NumericRange {
	return NumericRange{Min: math.Inf(-1), Max: math.Inf(1)}
}

// MatchClause is one exact, range, or set predicate. Exactly one of Range or
// Values is meaningful: Values is non-nil for set membership.
type MatchClause struct {
	Field  field.Name
	Path   string
	Range  *NumericRange
	Values []string
}

// IsSet reports whether the clause is a set-membership predicate.
func (c MatchClause) IsSet() bool { return c.Range == nil }

// TenantClause restricts a plan to one tenant.
type TenantClause struct {
	Path string
	Key  string
}

// Plan is the compiled form of one request: search clauses, match clauses,
// and the tenant clause, all combined with AND.
type Plan struct {
	search        []SearchClause
	match         []MatchClause
	scope         *TenantClause
	unsatisfiable bool
}

// Search returns the search-relevance clauses.
func (p *Plan) Search() []SearchClause { return p.search }

// Match returns the match clauses, excluding the tenant clause.
func (p *Plan) Match() []MatchClause { return p.match }

// HasSearch reports whether a search-relevance stage is present.
func (p *Plan) HasSearch() bool { return len(p.search) > 0 }

// Scope returns the tenant clause.
func (p *Plan) Scope() (TenantClause, bool) {
	if p.scope == nil {
		return TenantClause{}, false
	}
	return *p.scope, true
}

// Scoped reports whether the tenant clause has been applied.
func (p *Plan) Scoped() bool { return p.scope != nil && p.scope.Key != "" }

// Unsatisfiable reports whether the plan provably matches no record
// (an empty SET, or a CONTAINS term with no searchable token).
func (p *Plan) Unsatisfiable() bool { return p.unsatisfiable }

// Stage returns the list stage: search with a relevance clause, else match.
func (p *Plan) Stage() domain.Stage {
	if p.HasSearch() {
		return domain.StageSearch
	}
	return domain.StageMatch
}
