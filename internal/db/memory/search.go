package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/domain/search/plan"
)

// defaultTagSeparator is the separator TAG fields split on when none is configured.
const defaultTagSeparator = ","

// Aggregate evaluates q.Plan over the index, orders by q.Sort and returns
// the window [Offset, Offset+Limit).
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if err := db.CheckScoped(q.Plan); err != nil {
		return nil, err
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if err := s.check(ctx, db.OpAggregate); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[q.IndexName]
	if !ok {
		return nil, &db.Error{Op: db.OpAggregate, Err: db.ErrIndexNotFound}
	}
	keys, err := s.matchLocked(idx, q.Plan)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	if err := s.sortLocked(idx, keys, q.Sort); err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	total := len(keys)
	start := min(q.Offset, total)
	end := min(start+q.Limit, total)

	entries := make([]db.SearchEntry, 0, end-start)
	for _, k := range keys[start:end] {
		h := s.hashes[k]
		fields := make(map[string]string, len(q.Load))
		for _, f := range q.Load {
			if v, ok := h[f]; ok {
				fields[f] = v
			}
		}
		entries = append(entries, db.SearchEntry{Key: k, Fields: fields})
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// Count returns the number of hashes q.Plan matches.
func (s *Store) Count(ctx context.Context, q *db.CountQuery) (int, error) {
	if q.IndexName == "" {
		return 0, fmt.Errorf("index name is required")
	}
	if err := db.CheckScoped(q.Plan); err != nil {
		return 0, err
	}
	if err := s.check(ctx, db.OpSearch); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[q.IndexName]
	if !ok {
		return 0, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}
	keys, err := s.matchLocked(idx, q.Plan)
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	return len(keys), nil
}

// matchLocked returns the indexed keys satisfying every clause of p, in key order.
func (s *Store) matchLocked(idx *db.IndexDefinition, p *plan.Plan) ([]string, error) {
	var out []string
	for _, k := range s.keysLocked(idx) {
		ok, err := evaluate(idx, s.hashes[k], p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func evaluate(idx *db.IndexDefinition, h map[string]string, p *plan.Plan) (bool, error) {
	for _, c := range p.Search() {
		f, err := attribute(idx, c.Path)
		if err != nil {
			return false, err
		}
		v, ok := h[f.Name]
		if !ok {
			return false, nil
		}
		if c.Mode == plan.Exact {
			if !tagMatches(f, v, []string{c.Term}) {
				return false, nil
			}
			continue
		}
		if !containsTokens(v, c.Tokens) {
			return false, nil
		}
	}

	for _, c := range p.Match() {
		f, err := attribute(idx, c.Path)
		if err != nil {
			return false, err
		}
		v, ok := h[f.Name]
		if !ok {
			return false, nil
		}
		if c.IsSet() {
			if !tagMatches(f, v, c.Values) {
				return false, nil
			}
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || !c.Range.Contains(n) {
			return false, nil
		}
	}

	scope, _ := p.Scope()
	f, err := attribute(idx, scope.Path)
	if err != nil {
		return false, err
	}
	v, ok := h[f.Name]
	return ok && tagMatches(f, v, []string{scope.Key}), nil
}

func attribute(idx *db.IndexDefinition, attr string) (db.IndexField, error) {
	f, ok := idx.Field(attr)
	if !ok {
		return db.IndexField{}, fmt.Errorf("unknown field %q", attr)
	}
	return f, nil
}

// tagMatches reports whether any tag of v equals any of want.
func tagMatches(f db.IndexField, v string, want []string) bool {
	sep := f.TagSeparator
	if sep == "" {
		sep = defaultTagSeparator
	}
	for _, tag := range strings.Split(v, sep) {
		tag = strings.TrimSpace(tag)
		for _, w := range want {
			if f.TagCaseSensitive && tag == w {
				return true
			}
			if !f.TagCaseSensitive && strings.EqualFold(tag, w) {
				return true
			}
		}
	}
	return false
}

// containsTokens reports whether every query token is an infix of some
// indexed token of v.
func containsTokens(v string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	indexed := plan.Tokenize(v)
	for _, t := range tokens {
		if !slices.ContainsFunc(indexed, func(it string) bool { return strings.Contains(it, t) }) {
			return false
		}
	}
	return true
}

// sortLocked orders keys by the given keys. Missing values sort last in
// either direction; remaining ties keep key order.
func (s *Store) sortLocked(idx *db.IndexDefinition, keys []string, order []plan.OrderKey) error {
	fields := make([]db.IndexField, 0, len(order))
	for _, o := range order {
		f, err := attribute(idx, o.Path)
		if err != nil {
			return err
		}
		fields = append(fields, f)
	}

	slices.SortStableFunc(keys, func(a, b string) int {
		for i, o := range order {
			c := compareAttr(fields[i], s.hashes[a], s.hashes[b], o.Desc)
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return nil
}

func compareAttr(f db.IndexField, a, b map[string]string, desc bool) int {
	va, okA := a[f.Name]
	vb, okB := b[f.Name]
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}

	var c int
	if f.Type == db.IndexFieldNumeric {
		fa, errA := strconv.ParseFloat(va, 64)
		fb, errB := strconv.ParseFloat(vb, 64)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		c = cmp.Compare(fa, fb)
	} else {
		if !f.TagCaseSensitive {
			va, vb = strings.ToLower(va), strings.ToLower(vb)
		}
		c = strings.Compare(va, vb)
	}
	if desc {
		return -c
	}
	return c
}
