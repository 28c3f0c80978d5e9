// Package search executes compiled query plans against the record index.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/domain"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	reporec "github.com/kailas-cloud/recsearch/internal/repository/record"
)

// store is the consumer interface for plan execution (ISP).
type store interface {
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.SearchResult, error)
	Count(ctx context.Context, q *db.CountQuery) (int, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store  store
	layout reporec.Layout
}

// New creates a search repository.
func New(s store, l reporec.Layout) *Repo {
	return &Repo{store: s, layout: l}
}

// List runs p ordered by sort and returns the rows of window w.
// The insertion sequence is always the last sort key, so ties are broken
// the same way on every call. An unsatisfiable plan returns no rows
// without a storage round trip.
func (r *Repo) List(
	ctx context.Context, p *plan.Plan, sort []request.SortKey, w request.Window,
) ([]domrec.Record, error) {
	if err := checkScoped(p); err != nil {
		return nil, err
	}
	if p.Unsatisfiable() {
		return []domrec.Record{}, nil
	}

	order := append(plan.CompileSort(sort), plan.OrderKey{Path: domrec.AttrSeq})
	q := &db.AggregateQuery{
		IndexName: r.layout.IndexName(),
		Plan:      p,
		Sort:      order,
		Offset:    w.Start,
		Limit:     w.Size(),
		Load:      reporec.LoadAttrs,
	}

	sr, err := r.store.Aggregate(ctx, q)
	if err != nil {
		return nil, domain.NewStorageError(p.Stage(), fmt.Errorf("aggregate %s: %w", q.IndexName, err))
	}

	rows := make([]domrec.Record, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		rows = append(rows, reporec.FromHash(r.layout.IDFromKey(e.Key), e.Fields))
	}
	return rows, nil
}

// Count returns the number of records p matches. An unsatisfiable plan
// counts zero without a storage round trip.
func (r *Repo) Count(ctx context.Context, p *plan.Plan) (int, error) {
	if err := checkScoped(p); err != nil {
		return 0, err
	}
	if p.Unsatisfiable() {
		return 0, nil
	}

	q := &db.CountQuery{IndexName: r.layout.IndexName(), Plan: p}
	n, err := r.store.Count(ctx, q)
	if err != nil {
		return 0, domain.NewStorageError(domain.StageCount, fmt.Errorf("count %s: %w", q.IndexName, err))
	}
	return n, nil
}

func checkScoped(p *plan.Plan) error {
	if err := db.CheckScoped(p); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnresolvedTenant, err)
	}
	return nil
}
