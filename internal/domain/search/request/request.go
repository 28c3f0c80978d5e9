package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/recsearch/internal/domain"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
)

// Default request limits.
const (
	DefaultMaxWindow   = 1000
	DefaultMaxSortKeys = 4
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc in any case. Empty means asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: invalid sort direction %q", domain.ErrInvalidRequest, s)
	}
}

// SortKey orders results by one catalog field.
type SortKey struct {
	Field     field.Name
	Direction Direction
}

// Window is the half-open row range [Start, End).
type Window struct {
	Start int
	End   int
}

// Size returns the number of rows the window can hold.
func (w Window) Size() int { return w.End - w.Start }

// Limits bounds what a single request may ask for.
type Limits struct {
	MaxWindow   int
	MaxSortKeys int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{MaxWindow: DefaultMaxWindow, MaxSortKeys: DefaultMaxSortKeys}
}

// Request is a validated search request.
type Request struct {
	filters filter.Model
	sort    []SortKey
	window  Window
}

// New validates window and sort, and creates a Request.
// Filter entries are validated against the catalog at compile time.
func New(filters filter.Model, sort []SortKey, startRow, endRow int, lim Limits) (Request, error) {
	if startRow < 0 {
		return Request{}, fmt.Errorf("%w: startRow must be >= 0", domain.ErrInvalidRequest)
	}
	if endRow <= startRow {
		return Request{}, fmt.Errorf("%w: endRow must be greater than startRow", domain.ErrInvalidRequest)
	}
	if lim.MaxWindow > 0 && endRow-startRow > lim.MaxWindow {
		return Request{}, fmt.Errorf("%w: window too large (max %d rows)", domain.ErrInvalidRequest, lim.MaxWindow)
	}
	if lim.MaxSortKeys > 0 && len(sort) > lim.MaxSortKeys {
		return Request{}, fmt.Errorf("%w: too many sort keys (max %d)", domain.ErrInvalidRequest, lim.MaxSortKeys)
	}

	seen := make(map[field.Name]bool, len(sort))
	keys := make([]SortKey, 0, len(sort))
	for _, k := range sort {
		if _, ok := field.Lookup(k.Field); !ok {
			return Request{}, fmt.Errorf("%w: unknown sort field %q", domain.ErrInvalidRequest, k.Field)
		}
		if k.Direction != Asc && k.Direction != Desc {
			return Request{}, fmt.Errorf("%w: invalid sort direction %q", domain.ErrInvalidRequest, k.Direction)
		}
		// later keys on the same field can never change the order
		if seen[k.Field] {
			continue
		}
		seen[k.Field] = true
		keys = append(keys, k)
	}

	return Request{
		filters: filters,
		sort:    keys,
		window:  Window{Start: startRow, End: endRow},
	}, nil
}

// Filters returns the filter model.
func (r *Request) Filters() filter.Model { return r.filters }

// Sort returns the sort keys in priority order.
func (r *Request) Sort() []SortKey { return r.sort }

// Window returns the requested row window.
func (r *Request) Window() Window { return r.window }
