package plan

import (
	"math"
	"strings"
	"unicode"

	"github.com/kailas-cloud/recsearch/internal/domain"
	"github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
)

// Compile validates filters against the catalog and compiles them into a
// tenant-scoped plan. Validation runs over every entry before anything is
// built, so an invalid request never yields a partial plan.
func Compile(key tenant.Key, filters filter.Model) (*Plan, error) {
	if key.IsZero() {
		return nil, domain.ErrUnresolvedTenant
	}

	items := filters.Items()
	for _, it := range items {
		if err := Validate(it); err != nil {
			return nil, err
		}
	}
	items = Normalize(items)

	p := &Plan{}
	var texts []filter.Item
	for _, it := range items {
		spec := field.MustLookup(it.Field)
		switch e := it.Entry.(type) {
		case filter.Text:
			texts = append(texts, it)
		case filter.Number:
			r := numberRange(e)
			p.match = append(p.match, MatchClause{Field: it.Field, Path: spec.StoragePath(), Range: &r})
		case filter.Date:
			r := dateRange(e)
			p.match = append(p.match, MatchClause{Field: it.Field, Path: spec.StoragePath(), Range: &r})
		case filter.Set:
			values := append([]string{}, e.Values()...)
			p.match = append(p.match, MatchClause{Field: it.Field, Path: spec.SetPath(), Values: values})
			if e.IsEmpty() {
				p.unsatisfiable = true
			}
		}
	}

	search, unsat := BuildSearchStage(texts)
	p.search = search
	p.unsatisfiable = p.unsatisfiable || unsat

	ScopeToTenant(p, key)
	return p, nil
}

// Validate checks one entry against the catalog.
func Validate(it filter.Item) error {
	if it.Entry == nil {
		return domain.NewInvalidFilter(string(it.Field), "", "", "missing filter entry")
	}
	kind := it.Entry.Kind()
	op := it.Entry.Operator()
	reject := func(reason string) error {
		return domain.NewInvalidFilter(string(it.Field), string(kind), string(op), reason)
	}

	spec, ok := field.Lookup(it.Field)
	if !ok {
		return reject("unknown field")
	}
	if !spec.AllowsKind(kind) {
		return reject("kind not allowed for field")
	}
	if kind != field.Set && !spec.AllowsOperator(kind, op) {
		return reject("operator not allowed for field")
	}

	switch e := it.Entry.(type) {
	case filter.Number:
		if op == field.InRange {
			low, high := e.Range()
			if !finite(low) || !finite(high) {
				return reject("range bounds must be finite")
			}
			if low > high {
				return reject("range lower bound exceeds upper bound")
			}
		} else if !finite(e.Value()) {
			return reject("value must be finite")
		}
	case filter.Date:
		if op == field.InRange {
			low, high := e.Range()
			if low.After(high) {
				return reject("range lower bound exceeds upper bound")
			}
		}
	}
	return nil
}

// Normalize drops TEXT entries whose term is blank: an empty term means
// "no text constraint", and search engines reject empty queries.
func Normalize(items []filter.Item) []filter.Item {
	out := make([]filter.Item, 0, len(items))
	for _, it := range items {
		if t, ok := it.Entry.(filter.Text); ok && t.IsBlank() {
			continue
		}
		out = append(out, it)
	}
	return out
}

// BuildSearchStage compiles non-blank TEXT entries into search clauses, one
// per entry, all of which must match. EQUALS targets the exact-term
// representation and CONTAINS the partial one. The second result is true
// when a CONTAINS term has no searchable token and so can match nothing.
func BuildSearchStage(texts []filter.Item) ([]SearchClause, bool) {
	if len(texts) == 0 {
		return nil, false
	}
	unsat := false
	clauses := make([]SearchClause, 0, len(texts))
	for _, it := range texts {
		t, ok := it.Entry.(filter.Text)
		if !ok || t.IsBlank() {
			continue
		}
		spec := field.MustLookup(it.Field)
		c := SearchClause{Field: it.Field, Term: t.Term()}
		if t.Operator() == field.Equals {
			c.Mode = Exact
			c.Path = spec.ExactPath()
		} else {
			c.Mode = Partial
			c.Path = spec.StoragePath()
			c.Tokens = Tokenize(c.Term)
			if len(c.Tokens) == 0 {
				unsat = true
			}
		}
		clauses = append(clauses, c)
	}
	return clauses, unsat
}

// ScopeToTenant folds the tenant clause into p. It is applied after every
// caller filter and replaces any scope already present.
func ScopeToTenant(p *Plan, key tenant.Key) {
	p.scope = &TenantClause{Path: record.AttrSubmissionBaseNr, Key: key.String()}
}

// OrderKey is one compiled sort key.
type OrderKey struct {
	Path string
	Desc bool
}

// CompileSort maps sort keys to index attributes.
func CompileSort(keys []request.SortKey) []OrderKey {
	out := make([]OrderKey, 0, len(keys))
	for _, k := range keys {
		spec := field.MustLookup(k.Field)
		out = append(out, OrderKey{Path: spec.SortPath(), Desc: k.Direction == request.Desc})
	}
	return out
}

// tokenSeparators mirrors the default separators of the text index.
const tokenSeparators = ",.<>{}[]\"':;!@#$%^&*()-+=~|/\\?`"

// Tokenize splits s the way text attributes are indexed and lowercases each token.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(tokenSeparators, r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

func numberRange(n filter.Number) NumericRange {
	if n.Operator() == field.InRange {
		low, high := n.Range()
		return NumericRange{Min: low, Max: high}
	}
	return bound(n.Operator(), n.Value())
}

func dateRange(d filter.Date) NumericRange {
	if d.Operator() == field.InRange {
		low, high := d.Range()
		return NumericRange{Min: float64(low.Unix()), Max: float64(high.Unix())}
	}
	return bound(d.Operator(), float64(d.Value().Unix()))
}

func bound(op field.Operator, v float64) NumericRange {
	r := Unbounded()
	switch op {
	case field.Equals:
		r.Min, r.Max = v, v
	case field.LessThan:
		r.Max, r.MaxExclusive = v, true
	case field.LessThanOrEqual:
		r.Max = v
	case field.GreaterThan:
		r.Min, r.MinExclusive = v, true
	case field.GreaterThanOrEqual:
		r.Min = v
	}
	return r
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
