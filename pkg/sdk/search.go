package recsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kailas-cloud/recsearch/internal/domain"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
)

// SearchBuilder accumulates filters, sort keys and a window. The first
// construction error is reported by Do.
type SearchBuilder struct {
	svc       searchUseCase
	tenantKey string
	limits    request.Limits
	obs       *observer

	filters    filter.Model
	sort       []request.SortKey
	start, end int
	err        error
}

func newSearchBuilder(svc searchUseCase, tenantKey string, limits request.Limits, obs *observer) *SearchBuilder {
	return &SearchBuilder{svc: svc, tenantKey: tenantKey, limits: limits, obs: obs, end: 100}
}

func (b *SearchBuilder) put(f Field, e filter.Entry, err error) *SearchBuilder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = domain.NewInvalidFilter(string(f), string(e.Kind()), string(e.Operator()), err.Error())
		return b
	}
	b.filters.Put(field.Name(f), e)
	return b
}

// Equals matches records whose text field equals term, ignoring case.
func (b *SearchBuilder) Equals(f Field, term string) *SearchBuilder {
	e, err := filter.NewText(field.Equals, term)
	return b.put(f, e, err)
}

// Contains matches records whose text field contains every word of term.
func (b *SearchBuilder) Contains(f Field, term string) *SearchBuilder {
	e, err := filter.NewText(field.Contains, term)
	return b.put(f, e, err)
}

// In matches records whose field equals one of values. No values matches nothing.
func (b *SearchBuilder) In(f Field, values ...string) *SearchBuilder {
	e, err := filter.NewSet(values)
	return b.put(f, e, err)
}

// Compare matches records whose number field compares to v with op.
func (b *SearchBuilder) Compare(f Field, op Operator, v float64) *SearchBuilder {
	e, err := filter.NewNumber(field.Operator(op), v)
	return b.put(f, e, err)
}

// Between matches records whose number field lies in [low, high].
func (b *SearchBuilder) Between(f Field, low, high float64) *SearchBuilder {
	return b.put(f, filter.NewNumberRange(low, high), nil)
}

// CompareDate matches records whose date field compares to the day of t with op.
func (b *SearchBuilder) CompareDate(f Field, op Operator, t time.Time) *SearchBuilder {
	e, err := filter.NewDate(field.Operator(op), t)
	return b.put(f, e, err)
}

// BetweenDates matches records whose date field lies between the days of low and high.
func (b *SearchBuilder) BetweenDates(f Field, low, high time.Time) *SearchBuilder {
	return b.put(f, filter.NewDateRange(low, high), nil)
}

// SortAsc appends an ascending sort key.
func (b *SearchBuilder) SortAsc(f Field) *SearchBuilder {
	b.sort = append(b.sort, request.SortKey{Field: field.Name(f), Direction: request.Asc})
	return b
}

// SortDesc appends a descending sort key.
func (b *SearchBuilder) SortDesc(f Field) *SearchBuilder {
	b.sort = append(b.sort, request.SortKey{Field: field.Name(f), Direction: request.Desc})
	return b
}

// Window selects rows [start, end). Default: [0, 100).
func (b *SearchBuilder) Window(start, end int) *SearchBuilder {
	b.start, b.end = start, end
	return b
}

// Do runs the search.
func (b *SearchBuilder) Do(ctx context.Context) (_ Page, err error) {
	start := time.Now()
	rows := 0
	defer func() {
		b.obs.observe("search", start, err, slog.String("tenant", b.tenantKey), slog.Int("rows", rows))
	}()

	if b.err != nil {
		return Page{}, fmt.Errorf("search: %w", b.err)
	}
	key, err := tenant.NewKey(b.tenantKey)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	req, err := request.New(b.filters, b.sort, b.start, b.end, b.limits)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}

	p, err := b.svc.Search(ctx, key, req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	rows = len(p.Rows)
	b.obs.observeRows(rows)
	return pageFromDomain(p), nil
}
