package page

import (
	"testing"

	"github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
)

func rows(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = record.Record{ID: string(rune('a' + i))}
	}
	return out
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		window   request.Window
		total    int
		mode     Mode
		wantLast int
		wantEnd  bool
	}{
		{"middle page running", 2, request.Window{Start: 2, End: 4}, 5, Running, 4, false},
		{"middle page sentinel", 2, request.Window{Start: 2, End: 4}, 5, Sentinel, Unknown, false},
		{"short final page", 1, request.Window{Start: 4, End: 100}, 5, Running, 5, true},
		{"short final page sentinel", 1, request.Window{Start: 4, End: 100}, 5, Sentinel, 5, true},
		{"full page hitting total", 2, request.Window{Start: 3, End: 5}, 5, Sentinel, 5, true},
		{"full page unknown total", 2, request.Window{Start: 0, End: 2}, Unknown, Sentinel, Unknown, false},
		{"empty result", 0, request.Window{Start: 0, End: 10}, 0, Sentinel, 0, true},
		{"past the end", 0, request.Window{Start: 10, End: 20}, 5, Running, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Assemble(rows(tt.n), tt.window, tt.total, tt.mode)
			if p.LastRow != tt.wantLast {
				t.Errorf("LastRow = %d, want %d", p.LastRow, tt.wantLast)
			}
			if p.End != tt.wantEnd {
				t.Errorf("End = %v, want %v", p.End, tt.wantEnd)
			}
			if len(p.Rows) != tt.n {
				t.Errorf("len(Rows) = %d", len(p.Rows))
			}
			if p.Total != tt.total {
				t.Errorf("Total = %d", p.Total)
			}
		})
	}
}

func TestAssemble_NilRowsBecomeEmpty(t *testing.T) {
	p := Assemble(nil, request.Window{Start: 0, End: 10}, 0, Running)
	if p.Rows == nil {
		t.Error("Rows must be non-nil for JSON encoding as []")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": Running, "running": Running, "sentinel": Sentinel} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("bogus"); err == nil {
		t.Error("expected error")
	}
}
