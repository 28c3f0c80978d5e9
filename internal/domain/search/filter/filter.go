// Package filter holds the typed filter entries a search request carries.
// Each kind is its own variant with only the fields meaningful to it.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
)

// MaxSetValues caps the number of values in a SET entry.
const MaxSetValues = 256

// ErrOperatorKind is returned when an operator does not belong to the entry kind.
var ErrOperatorKind = errors.New("operator not valid for kind")

// Entry is one typed filter entry. The set of implementations is closed.
type Entry interface {
	Kind() field.Kind
	// Operator is empty for SET entries.
	Operator() field.Operator
	isEntry()
}

// Text is a TEXT entry: an exact or partial term over a searchable field.
type Text struct {
	op    field.Operator
	value string
}

// NewText creates a TEXT entry. Only EQUALS and CONTAINS are accepted.
func NewText(op field.Operator, value string) (Text, error) {
	if !op.IsText() {
		return Text{}, fmt.Errorf("%w: %s for %s", ErrOperatorKind, op, field.Text)
	}
	return Text{op: op, value: value}, nil
}

func (Text) Kind() field.Kind { return field.Text }

func (t Text) Operator() field.Operator { return t.op }

// Value returns the raw term.
func (t Text) Value() string { return t.value }

// Term returns the trimmed term.
func (t Text) Term() string { return strings.TrimSpace(t.value) }

// IsBlank reports whether the term is empty after trimming.
func (t Text) IsBlank() bool { return t.Term() == "" }

func (Text) isEntry() {}

// Number is a NUMBER entry: a single bound, an equality, or an inclusive range.
type Number struct {
	op    field.Operator
	value float64
	low   float64
	high  float64
}

// NewNumber creates a single-value NUMBER entry. IN_RANGE must use NewNumberRange.
func NewNumber(op field.Operator, value float64) (Number, error) {
	if !op.IsComparison() || op == field.InRange {
		return Number{}, fmt.Errorf("%w: %s for %s", ErrOperatorKind, op, field.Number)
	}
	return Number{op: op, value: value}, nil
}

// NewNumberRange creates an IN_RANGE NUMBER entry. Ordering of the bounds is
// checked at compile time so the offending field can be reported.
func NewNumberRange(low, high float64) Number {
	return Number{op: field.InRange, low: low, high: high}
}

func (Number) Kind() field.Kind { return field.Number }

func (n Number) Operator() field.Operator { return n.op }

// Value returns the single bound (not meaningful for IN_RANGE).
func (n Number) Value() float64 { return n.value }

// Range returns the IN_RANGE bounds.
func (n Number) Range() (low, high float64) { return n.low, n.high }

func (Number) isEntry() {}

// Date is a DATE entry. Values are calendar days at UTC midnight.
type Date struct {
	op    field.Operator
	value time.Time
	low   time.Time
	high  time.Time
}

// NewDate creates a single-value DATE entry.
func NewDate(op field.Operator, value time.Time) (Date, error) {
	if !op.IsComparison() || op == field.InRange {
		return Date{}, fmt.Errorf("%w: %s for %s", ErrOperatorKind, op, field.Date)
	}
	return Date{op: op, value: Day(value)}, nil
}

// NewDateRange creates an IN_RANGE DATE entry.
func NewDateRange(low, high time.Time) Date {
	return Date{op: field.InRange, low: Day(low), high: Day(high)}
}

func (Date) Kind() field.Kind { return field.Date }

func (d Date) Operator() field.Operator { return d.op }

// Value returns the single bound.
func (d Date) Value() time.Time { return d.value }

// Range returns the IN_RANGE bounds.
func (d Date) Range() (low, high time.Time) { return d.low, d.high }

func (Date) isEntry() {}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Set is a SET entry: the stored value must equal one of Values.
// An empty set matches nothing.
type Set struct {
	values []string
}

// NewSet creates a SET entry. Duplicates are removed, order is kept.
func NewSet(values []string) (Set, error) {
	if len(values) > MaxSetValues {
		return Set{}, fmt.Errorf("too many set values (max %d)", MaxSetValues)
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return Set{values: out}, nil
}

func (Set) Kind() field.Kind { return field.Set }

func (Set) Operator() field.Operator { return "" }

// Values returns the accepted values.
func (s Set) Values() []string { return s.values }

// IsEmpty reports whether no value is accepted.
func (s Set) IsEmpty() bool { return len(s.values) == 0 }

func (Set) isEntry() {}

// Item pairs an entry with the field it constrains.
type Item struct {
	Field field.Name
	Entry Entry
}

// Model is an ordered filter collection with one entry per field.
type Model struct {
	order   []field.Name
	entries map[field.Name]Entry
}

// NewModel builds a model from items. A repeated field keeps its first
// position and its last entry.
func NewModel(items ...Item) Model {
	var m Model
	for _, it := range items {
		m.Put(it.Field, it.Entry)
	}
	return m
}

// Put sets the entry for name.
func (m *Model) Put(name field.Name, e Entry) {
	if m.entries == nil {
		m.entries = make(map[field.Name]Entry)
	}
	if _, ok := m.entries[name]; !ok {
		m.order = append(m.order, name)
	}
	m.entries[name] = e
}

// Get returns the entry for name.
func (m Model) Get(name field.Name) (Entry, bool) {
	e, ok := m.entries[name]
	return e, ok
}

// Items returns the entries in first-occurrence order.
func (m Model) Items() []Item {
	out := make([]Item, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, Item{Field: n, Entry: m.entries[n]})
	}
	return out
}

// Len returns the number of fields constrained.
func (m Model) Len() int { return len(m.order) }

// IsEmpty reports whether the model has no entries.
func (m Model) IsEmpty() bool { return len(m.order) == 0 }
