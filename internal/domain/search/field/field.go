// Package field is the closed catalog of searchable recommendation attributes.
package field

import (
	"slices"
	"sort"
)

// Name identifies a catalog field.
type Name string

// Catalog fields.
const (
	RecommendationTitle         Name = "RECOMMENDATION_TITLE"
	ObjectName                  Name = "OBJECT_NAME"
	ObjectID                    Name = "OBJECT_ID"
	RecommendationStatus        Name = "RECOMMENDATION_STATUS"
	RecommendationPriority      Name = "RECOMMENDATION_PRIORITY"
	RecommendationCategory      Name = "RECOMMENDATION_CATEGORY"
	RecommendationType          Name = "RECOMMENDATION_TYPE"
	Currency                    Name = "CURRENCY"
	DueDate                     Name = "DUE_DATE"
	RecommendationCompletedDate Name = "RECOMMENDATION_COMPLETED_DATE"
	LossEstimateBeforeValue     Name = "LOSS_ESTIMATE_BEFORE_VALUE"
	LossEstimateAfterValue      Name = "LOSS_ESTIMATE_AFTER_VALUE"
)

// Kind is the declared data-type category of a filter.
type Kind string

// Filter kinds.
const (
	Text   Kind = "TEXT"
	Number Kind = "NUMBER"
	Date   Kind = "DATE"
	Set    Kind = "SET"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case Text, Number, Date, Set:
		return true
	}
	return false
}

// Operator selects the predicate rule within a kind.
type Operator string

// Operators.
const (
	Equals             Operator = "EQUALS"
	Contains           Operator = "CONTAINS"
	LessThan           Operator = "LESS_THAN"
	LessThanOrEqual    Operator = "LESS_THAN_OR_EQUAL"
	GreaterThan        Operator = "GREATER_THAN"
	GreaterThanOrEqual Operator = "GREATER_THAN_OR_EQUAL"
	InRange            Operator = "IN_RANGE"
)

// IsText reports whether op is meaningful for TEXT filters.
func (op Operator) IsText() bool {
	return op == Equals || op == Contains
}

// IsComparison reports whether op is meaningful for NUMBER and DATE filters.
func (op Operator) IsComparison() bool {
	switch op {
	case Equals, LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual, InRange:
		return true
	}
	return false
}

var (
	textOps    = []Operator{Equals, Contains}
	exactOps   = []Operator{Equals}
	compareOps = []Operator{Equals, LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual, InRange}
)

// Spec describes one catalog field.
type Spec struct {
	name      Name
	path      string
	kinds     map[Kind][]Operator
	kindOrder []Kind
}

// Name returns the catalog identifier.
func (s Spec) Name() Name { return s.name }

// StoragePath returns the record attribute the field is stored under.
func (s Spec) StoragePath() string { return s.path }

// ExactPath returns the index attribute holding the exact-term representation
// of a TEXT field. For other kinds it is the storage path itself.
func (s Spec) ExactPath() string {
	if _, ok := s.kinds[Text]; ok {
		return s.path + ExactSuffix
	}
	return s.path
}

// SetPath returns the case-sensitive TAG attribute SET clauses target.
// Fields that are also TEXT get a companion attribute, since their exact-term
// TAG ignores case.
func (s Spec) SetPath() string {
	if s.AllowsKind(Text) && s.AllowsKind(Set) {
		return s.path + SetSuffix
	}
	return s.path
}

// SortPath returns the index attribute used to order by this field.
func (s Spec) SortPath() string { return s.ExactPath() }

// Kinds returns the allowed kinds in declaration order.
func (s Spec) Kinds() []Kind { return slices.Clone(s.kindOrder) }

// AllowsKind reports whether k is an allowed kind.
func (s Spec) AllowsKind(k Kind) bool {
	_, ok := s.kinds[k]
	return ok
}

// Operators returns the operators allowed for kind k. SET has none.
func (s Spec) Operators(k Kind) []Operator { return slices.Clone(s.kinds[k]) }

// AllowsOperator reports whether op is allowed for kind k.
func (s Spec) AllowsOperator(k Kind, op Operator) bool {
	return slices.Contains(s.kinds[k], op)
}

// ExactSuffix names the exact-term companion of a TEXT attribute in the index.
const ExactSuffix = "_exact"

// SetSuffix names the case-sensitive companion of a TEXT attribute that also
// accepts SET filters.
const SetSuffix = "_set"

func spec(name Name, path string, kinds ...kindOps) Spec {
	s := Spec{name: name, path: path, kinds: make(map[Kind][]Operator, len(kinds))}
	for _, k := range kinds {
		s.kinds[k.kind] = k.ops
		s.kindOrder = append(s.kindOrder, k.kind)
	}
	return s
}

type kindOps struct {
	kind Kind
	ops  []Operator
}

func text(ops ...Operator) kindOps { return kindOps{kind: Text, ops: ops} }
func number() kindOps              { return kindOps{kind: Number, ops: compareOps} }
func date() kindOps                { return kindOps{kind: Date, ops: compareOps} }
func set() kindOps                 { return kindOps{kind: Set} }

// catalog is built once and never mutated.
var catalog = map[Name]Spec{
	RecommendationTitle:         spec(RecommendationTitle, "recommendation_title", text(textOps...)),
	ObjectName:                  spec(ObjectName, "object_name", text(textOps...)),
	ObjectID:                    spec(ObjectID, "object_id", text(exactOps...), set()),
	RecommendationStatus:        spec(RecommendationStatus, "recommendation_status", set()),
	RecommendationPriority:      spec(RecommendationPriority, "recommendation_priority", set()),
	RecommendationCategory:      spec(RecommendationCategory, "recommendation_category", set()),
	RecommendationType:          spec(RecommendationType, "recommendation_type", set()),
	Currency:                    spec(Currency, "currency", set()),
	DueDate:                     spec(DueDate, "due_date", date()),
	RecommendationCompletedDate: spec(RecommendationCompletedDate, "completed_date", date()),
	LossEstimateBeforeValue:     spec(LossEstimateBeforeValue, "loss_estimate_before", number()),
	LossEstimateAfterValue:      spec(LossEstimateAfterValue, "loss_estimate_after", number()),
}

// Lookup returns the spec for name.
func Lookup(name Name) (Spec, bool) {
	s, ok := catalog[name]
	return s, ok
}

// MustLookup returns the spec for a catalog constant. Unknown names panic:
// the catalog is closed, so a miss is a programming error.
func MustLookup(name Name) Spec {
	s, ok := catalog[name]
	if !ok {
		panic("field: unknown catalog field " + string(name))
	}
	return s
}

// AllowedKinds returns the kinds allowed for name.
func AllowedKinds(name Name) []Kind { return MustLookup(name).Kinds() }

// AllowedOperators returns the operators allowed for name under kind k.
func AllowedOperators(name Name, k Kind) []Operator { return MustLookup(name).Operators(k) }

// StoragePath returns the record attribute for name.
func StoragePath(name Name) string { return MustLookup(name).StoragePath() }

// All returns every catalog spec ordered by name.
func All() []Spec {
	out := make([]Spec, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
