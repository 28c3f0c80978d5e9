package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/recsearch/internal/db/memory"
	"github.com/kailas-cloud/recsearch/internal/domain"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/recsearch/internal/domain/search/page"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	reporec "github.com/kailas-cloud/recsearch/internal/repository/record"
	reposearch "github.com/kailas-cloud/recsearch/internal/repository/search"
)

// engine wires the service to the in-memory store through the real repositories.
type engine struct {
	svc     *Service
	records *reporec.Repo
}

func newEngine(t *testing.T, mode page.Mode, recs ...domrec.Record) *engine {
	t.Helper()
	store := memory.New()
	layout := reporec.NewLayout("test:")
	records := reporec.New(store, layout)
	if err := records.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if _, err := records.Seed(context.Background(), recs); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return &engine{svc: New(reposearch.New(store, layout), mode), records: records}
}

func (e *engine) search(t *testing.T, key string, start, end int, sort []request.SortKey, items ...filter.Item) page.Page {
	t.Helper()
	pg, err := e.svc.Search(context.Background(), mustKey(t, key), mustRequest(t, start, end, sort, items...))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	return pg
}

func (e *engine) count(t *testing.T, key string, items ...filter.Item) int {
	t.Helper()
	return e.search(t, key, 0, request.DefaultMaxWindow, nil, items...).Total
}

func ids(rows []domrec.Record) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func fp(v float64) *float64 { return &v }

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

// dataset: 8 SUB-A records (3 with "Fire" in the title) and 4 SUB-B records.
func dataset() []domrec.Record {
	a := []struct {
		title, status, object string
		loss                  float64
		due                   string
	}{
		{"Fire door blocked", "OPEN", "Hall B", 500, "2024-01-10"},
		{"Sprinkler pressure low", "OPEN", "Hall B", 1500, "2024-02-10"},
		{"Install fire alarm", "CLOSED", "Warehouse", 2500, "2024-03-10"},
		{"Emergency lighting", "OPEN", "Warehouse", 3500, "2024-04-10"},
		{"Wildfire exposure review", "OPEN", "Yard", 4500, "2024-05-10"},
		{"Housekeeping", "IN PROGRESS", "Yard", 5500, "2024-06-10"},
		{"Electrical inspection", "CLOSED", "Office", 6500, "2024-07-10"},
		{"Roof drainage", "OPEN", "Office", 7500, "2024-08-10"},
	}
	var out []domrec.Record
	for i, r := range a {
		out = append(out, domrec.Record{
			ID:                 fmt.Sprintf("a-%d", i+1),
			Title:              r.title,
			Status:             r.status,
			ObjectName:         r.object,
			SubmissionBaseNr:   "SUB-A",
			LossEstimateBefore: fp(r.loss),
			DueDate:            day(r.due),
			Currency:           "EUR",
		})
	}
	for i := range 4 {
		out = append(out, domrec.Record{
			ID:               fmt.Sprintf("b-%d", i+1),
			Title:            "Fire door blocked",
			Status:           "OPEN",
			ObjectName:       "Hall B",
			SubmissionBaseNr: "SUB-B",
			Currency:         "EUR",
		})
	}
	return out
}

func TestProperty_EmptyFilterReturnsTenantInInsertionOrder(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	pg := e.search(t, "SUB-A", 0, 100, nil)

	want := []string{"a-1", "a-2", "a-3", "a-4", "a-5", "a-6", "a-7", "a-8"}
	if !slices.Equal(ids(pg.Rows), want) {
		t.Fatalf("rows = %v, want %v", ids(pg.Rows), want)
	}
	if pg.Total != 8 || pg.LastRow != 8 || !pg.End {
		t.Errorf("page = total %d lastRow %d end %v", pg.Total, pg.LastRow, pg.End)
	}
}

func TestProperty_TextOperators(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)

	pg := e.search(t, "SUB-A", 0, 100, nil, textItem(t, field.ObjectName, field.Equals, "hall b"))
	for _, r := range pg.Rows {
		if !strings.EqualFold(r.ObjectName, "hall b") {
			t.Errorf("EQUALS returned %q", r.ObjectName)
		}
	}
	if len(pg.Rows) != 2 {
		t.Errorf("EQUALS rows = %v", ids(pg.Rows))
	}

	pg = e.search(t, "SUB-A", 0, 100, nil, textItem(t, field.RecommendationTitle, field.Contains, "fire"))
	for _, r := range pg.Rows {
		if !strings.Contains(strings.ToLower(r.Title), "fire") {
			t.Errorf("CONTAINS returned %q", r.Title)
		}
	}
}

// 8 tenant-A records, 3 contain "fire" (one as an infix of "Wildfire").
func TestProperty_ContainsFireScenario(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	pg := e.search(t, "SUB-A", 0, 100, nil, textItem(t, field.RecommendationTitle, field.Contains, "Fire"))
	if !slices.Equal(ids(pg.Rows), []string{"a-1", "a-3", "a-5"}) {
		t.Fatalf("rows = %v", ids(pg.Rows))
	}
	if pg.Total != 3 {
		t.Errorf("count = %d, want 3", pg.Total)
	}
}

func TestProperty_BlankTextIsNoOp(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	status := setItem(t, field.RecommendationStatus, "OPEN")

	without := e.count(t, "SUB-A", status)
	for _, blank := range []string{"", "   ", "\t"} {
		with := e.count(t, "SUB-A", status, textItem(t, field.RecommendationTitle, field.Contains, blank))
		if with != without {
			t.Errorf("blank %q changed count: %d vs %d", blank, with, without)
		}
	}
}

func TestProperty_InRange(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)

	for _, r := range [][2]float64{{0, 10000}, {1500, 4500}, {2000, 2000}, {2500, 2500}} {
		item := filter.Item{Field: field.LossEstimateBeforeValue, Entry: filter.NewNumberRange(r[0], r[1])}
		pg := e.search(t, "SUB-A", 0, 100, nil, item)
		for _, row := range pg.Rows {
			v := *row.LossEstimateBefore
			if v < r[0] || v > r[1] {
				t.Errorf("range %v returned %v", r, v)
			}
		}
	}

	low, high := day("2024-02-10"), day("2024-04-10")
	pg := e.search(t, "SUB-A", 0, 100, nil, filter.Item{Field: field.DueDate, Entry: filter.NewDateRange(*low, *high)})
	if !slices.Equal(ids(pg.Rows), []string{"a-2", "a-3", "a-4"}) {
		t.Errorf("date range rows = %v", ids(pg.Rows))
	}

	bad := filter.Item{Field: field.LossEstimateBeforeValue, Entry: filter.NewNumberRange(10, 1)}
	_, err := e.svc.Search(context.Background(), mustKey(t, "SUB-A"), mustRequest(t, 0, 10, nil, bad))
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Errorf("low > high must be InvalidFilter, got %v", err)
	}
}

func TestProperty_EmptySetMatchesNothing(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	pg := e.search(t, "SUB-A", 0, 100, nil, setItem(t, field.RecommendationStatus))
	if len(pg.Rows) != 0 || pg.Total != 0 {
		t.Fatalf("empty set returned %v total %d", ids(pg.Rows), pg.Total)
	}
	if pg.Rows == nil {
		t.Error("rows must be an empty list, not nil")
	}
}

func TestProperty_TenantIsolation(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	requests := [][]filter.Item{
		nil,
		{textItem(t, field.RecommendationTitle, field.Contains, "fire")},
		{textItem(t, field.RecommendationTitle, field.Equals, "Fire door blocked")},
		{setItem(t, field.RecommendationStatus, "OPEN", "CLOSED", "IN PROGRESS")},
		{setItem(t, field.Currency, "EUR")},
	}
	for _, items := range requests {
		pg := e.search(t, "SUB-A", 0, 100, nil, items...)
		for _, r := range pg.Rows {
			if r.SubmissionBaseNr != "SUB-A" {
				t.Errorf("tenant A saw %s of %s", r.ID, r.SubmissionBaseNr)
			}
		}
	}
	if n := e.count(t, "SUB-C"); n != 0 {
		t.Errorf("unknown tenant count = %d", n)
	}
}

func TestProperty_TenantKeyIsOpaque(t *testing.T) {
	e := newEngine(t, page.Running,
		domrec.Record{ID: "a-1", Title: "Fire door blocked", Status: "OPEN", SubmissionBaseNr: "ACME"},
		domrec.Record{ID: "b-1", Title: "Fire door blocked", Status: "OPEN", SubmissionBaseNr: "ACME,GLOBEX"},
		domrec.Record{ID: "c-1", Title: "Fire door blocked", Status: "OPEN", SubmissionBaseNr: "GLOBEX"},
		domrec.Record{ID: "d-1", Title: "Fire door blocked", Status: "OPEN", SubmissionBaseNr: "acme"},
	)

	tests := []struct {
		key  string
		want []string
	}{
		{"ACME", []string{"a-1"}},
		{"GLOBEX", []string{"c-1"}},
		{"ACME,GLOBEX", []string{"b-1"}},
		{"acme", []string{"d-1"}},
		{"ACME GLOBEX", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			for _, items := range [][]filter.Item{
				nil,
				{textItem(t, field.RecommendationTitle, field.Contains, "fire")},
				{setItem(t, field.RecommendationStatus, "OPEN")},
			} {
				pg := e.search(t, tt.key, 0, 100, nil, items...)
				if got := ids(pg.Rows); !slices.Equal(got, tt.want) {
					t.Errorf("rows = %v, want %v", got, tt.want)
				}
				if pg.Total != len(tt.want) {
					t.Errorf("total = %d, want %d", pg.Total, len(tt.want))
				}
			}
		})
	}
}

func TestProperty_SetIsCaseSensitive(t *testing.T) {
	e := newEngine(t, page.Running,
		domrec.Record{ID: "r-1", ObjectID: "OBJ-A", Status: "OPEN", SubmissionBaseNr: "SUB-A"},
		domrec.Record{ID: "r-2", ObjectID: "obj-a", Status: "open", SubmissionBaseNr: "SUB-A"},
	)

	tests := []struct {
		name  string
		field field.Name
		value string
		want  []string
	}{
		{"object id upper", field.ObjectID, "OBJ-A", []string{"r-1"}},
		{"object id lower", field.ObjectID, "obj-a", []string{"r-2"}},
		{"object id other case", field.ObjectID, "Obj-A", []string{}},
		{"status upper", field.RecommendationStatus, "OPEN", []string{"r-1"}},
		{"status lower", field.RecommendationStatus, "open", []string{"r-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := e.search(t, "SUB-A", 0, 100, nil, setItem(t, tt.field, tt.value))
			if got := ids(pg.Rows); !slices.Equal(got, tt.want) {
				t.Errorf("rows = %v, want %v", got, tt.want)
			}
		})
	}

	// EQUALS on the same text field still ignores case.
	pg := e.search(t, "SUB-A", 0, 100, nil, textItem(t, field.ObjectID, field.Equals, "Obj-A"))
	if got := ids(pg.Rows); !slices.Equal(got, []string{"r-1", "r-2"}) {
		t.Errorf("EQUALS rows = %v, want [r-1 r-2]", got)
	}
}

func TestProperty_PaginationConsistency(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	sorts := [][]request.SortKey{
		nil,
		{{Field: field.RecommendationStatus, Direction: request.Asc}},
		{{Field: field.ObjectName, Direction: request.Desc}, {Field: field.DueDate, Direction: request.Asc}},
	}

	for _, sort := range sorts {
		full := e.search(t, "SUB-A", 0, 100, sort)
		for size := 1; size <= 4; size++ {
			var got []string
			for start := 0; ; start += size {
				pg := e.search(t, "SUB-A", start, start+size, sort)
				got = append(got, ids(pg.Rows)...)
				if pg.End {
					if pg.LastRow != len(got) {
						t.Errorf("final lastRow = %d, want %d", pg.LastRow, len(got))
					}
					break
				}
			}
			if !slices.Equal(got, ids(full.Rows)) {
				t.Errorf("sort %v size %d: windows %v != full %v", sort, size, got, ids(full.Rows))
			}
			if full.Total != len(got) {
				t.Errorf("count %d != concatenation %d", full.Total, len(got))
			}
		}
	}
}

func TestProperty_Idempotence(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	sort := []request.SortKey{{Field: field.RecommendationStatus, Direction: request.Desc}}
	item := textItem(t, field.RecommendationTitle, field.Contains, "r")

	first := e.search(t, "SUB-A", 1, 5, sort, item)
	second := e.search(t, "SUB-A", 1, 5, sort, item)
	if !slices.Equal(ids(first.Rows), ids(second.Rows)) || first.LastRow != second.LastRow || first.Total != second.Total {
		t.Fatalf("pages differ: %+v vs %+v", first, second)
	}
}

func TestProperty_AndSemantics(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	pg := e.search(t, "SUB-A", 0, 100, nil,
		textItem(t, field.RecommendationTitle, field.Contains, "fire"),
		setItem(t, field.RecommendationStatus, "OPEN"))

	if !slices.Equal(ids(pg.Rows), []string{"a-1", "a-5"}) {
		t.Fatalf("rows = %v", ids(pg.Rows))
	}
	for _, r := range pg.Rows {
		if r.Status != "OPEN" || !strings.Contains(strings.ToLower(r.Title), "fire") {
			t.Errorf("row %s violates a predicate", r.ID)
		}
	}
}

func TestProperty_WindowScenario(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	open := setItem(t, field.RecommendationStatus, "OPEN") // 5 of tenant A

	pg := e.search(t, "SUB-A", 2, 4, nil, open)
	if len(pg.Rows) != 2 || pg.LastRow != 4 || pg.End {
		t.Errorf("[2,4): rows %d lastRow %d end %v", len(pg.Rows), pg.LastRow, pg.End)
	}

	pg = e.search(t, "SUB-A", 4, 100, nil, open)
	if len(pg.Rows) != 1 || pg.LastRow != 5 || !pg.End {
		t.Errorf("[4,100): rows %d lastRow %d end %v", len(pg.Rows), pg.LastRow, pg.End)
	}

	s := newEngine(t, page.Sentinel, dataset()...)
	if pg := s.search(t, "SUB-A", 2, 4, nil, open); pg.LastRow != page.Unknown {
		t.Errorf("sentinel mode lastRow = %d", pg.LastRow)
	}
}

func TestProperty_SortOrders(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	pg := e.search(t, "SUB-A", 0, 100,
		[]request.SortKey{{Field: field.LossEstimateBeforeValue, Direction: request.Desc}})

	prev := math.Inf(1)
	for _, r := range pg.Rows {
		if *r.LossEstimateBefore > prev {
			t.Fatalf("not descending: %v", ids(pg.Rows))
		}
		prev = *r.LossEstimateBefore
	}
}

// Writes racing with reads may make list and count disagree transiently.
// Once writes stop they agree again.
func TestProperty_ConcurrentWritesSettle(t *testing.T) {
	e := newEngine(t, page.Running, dataset()...)
	const inserts = 50

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range inserts {
			rec := domrec.Record{ID: fmt.Sprintf("n-%d", i), Title: "New", SubmissionBaseNr: "SUB-A"}
			if _, _, err := e.records.Save(context.Background(), rec); err != nil {
				t.Errorf("Save: %v", err)
				return
			}
		}
	}()

	for range 20 {
		pg := e.search(t, "SUB-A", 0, request.DefaultMaxWindow, nil)
		if diff := pg.Total - len(pg.Rows); diff < -inserts || diff > inserts {
			t.Errorf("list/count drift %d exceeds concurrent writes", diff)
		}
	}
	wg.Wait()

	pg := e.search(t, "SUB-A", 0, request.DefaultMaxWindow, nil)
	if pg.Total != len(pg.Rows) || pg.Total != 8+inserts {
		t.Fatalf("after writes: total %d rows %d", pg.Total, len(pg.Rows))
	}
}
