package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/recsearch/internal/domain"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
)

func TestNew_Valid(t *testing.T) {
	sort := []SortKey{{Field: field.DueDate, Direction: Desc}}
	r, err := New(filter.Model{}, sort, 0, 100, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Window() != (Window{Start: 0, End: 100}) {
		t.Errorf("Window() = %+v", r.Window())
	}
	if r.Window().Size() != 100 {
		t.Errorf("Size() = %d", r.Window().Size())
	}
	if len(r.Sort()) != 1 || r.Sort()[0].Direction != Desc {
		t.Errorf("Sort() = %+v", r.Sort())
	}
	if !r.Filters().IsEmpty() {
		t.Error("expected empty filters")
	}
}

func TestNew_InvalidWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		wantSubstr string
	}{
		{"negative start", -1, 10, "startRow"},
		{"end equals start", 5, 5, "endRow"},
		{"end before start", 5, 2, "endRow"},
		{"too large", 0, DefaultMaxWindow + 1, "window too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(filter.Model{}, nil, tt.start, tt.end, DefaultLimits())
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSubstr)
			}
		})
	}
}

func TestNew_ZeroLimitsAreUnbounded(t *testing.T) {
	if _, err := New(filter.Model{}, nil, 0, 1_000_000, Limits{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_SortValidation(t *testing.T) {
	tests := []struct {
		name string
		sort []SortKey
	}{
		{"unknown field", []SortKey{{Field: "NOPE", Direction: Asc}}},
		{"bad direction", []SortKey{{Field: field.Currency, Direction: "sideways"}}},
		{"too many", []SortKey{
			{Field: field.Currency, Direction: Asc},
			{Field: field.DueDate, Direction: Asc},
			{Field: field.ObjectID, Direction: Asc},
			{Field: field.ObjectName, Direction: Asc},
			{Field: field.RecommendationTitle, Direction: Asc},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(filter.Model{}, tt.sort, 0, 10, DefaultLimits())
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNew_DuplicateSortFieldKeepsFirst(t *testing.T) {
	r, err := New(filter.Model{}, []SortKey{
		{Field: field.DueDate, Direction: Desc},
		{Field: field.DueDate, Direction: Asc},
	}, 0, 10, DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Sort()) != 1 || r.Sort()[0].Direction != Desc {
		t.Errorf("Sort() = %+v", r.Sort())
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"asc", Asc, false},
		{"DESC", Desc, false},
		{"", Asc, false},
		{" Desc ", Desc, false},
		{"up", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDirection(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
