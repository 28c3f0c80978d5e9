// Package page packages list results for a paging client.
package page

import (
	"fmt"

	"github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
)

// Unknown is the lastRow sentinel meaning "more rows may exist".
const Unknown = -1

// Mode controls lastRow while more pages remain.
type Mode string

// Last-row modes.
const (
	// Running reports the absolute number of rows reached so far.
	Running Mode = "running"
	// Sentinel reports Unknown until the final page.
	Sentinel Mode = "sentinel"
)

// ParseMode accepts running or sentinel. Empty means running.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Running:
		return Running, nil
	case Sentinel:
		return Sentinel, nil
	default:
		return "", fmt.Errorf("unknown last-row mode %q", s)
	}
}

// Page is one window of results.
type Page struct {
	Rows    []record.Record
	LastRow int
	// Total is the count of the same plan, or Unknown if it was not taken.
	Total int
	// End reports whether this page reached end-of-data.
	End bool
}

// Assemble builds a page from the rows returned for window w.
// A short page is end-of-data, and so is a full page that reaches a known
// total. At end-of-data lastRow is the absolute row count reached; otherwise
// it follows mode.
func Assemble(rows []record.Record, w request.Window, total int, mode Mode) Page {
	if rows == nil {
		rows = []record.Record{}
	}
	reached := w.Start + len(rows)
	end := len(rows) < w.Size() || (total >= 0 && reached >= total)

	last := reached
	if !end && mode == Sentinel {
		last = Unknown
	}
	return Page{Rows: rows, LastRow: last, Total: total, End: end}
}
