package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/recsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	reporec "github.com/kailas-cloud/recsearch/internal/repository/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	aggregateFn func(ctx context.Context, q *db.AggregateQuery) (*db.SearchResult, error)
	countFn     func(ctx context.Context, q *db.CountQuery) (int, error)
}

func (m *mockStore) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.SearchResult, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, q *db.CountQuery) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, q)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, reporec.NewLayout("recsearch:")), ms
}

func mustPlan(t *testing.T, items ...filter.Item) *plan.Plan {
	t.Helper()
	k, err := tenant.NewKey("SUB1")
	if err != nil {
		t.Fatal(err)
	}
	p, err := plan.Compile(k, filter.NewModel(items...))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}
