package field

import (
	"slices"
	"testing"
)

func TestLookup_KnownFields(t *testing.T) {
	tests := []struct {
		name  Name
		path  string
		kinds []Kind
	}{
		{RecommendationTitle, "recommendation_title", []Kind{Text}},
		{ObjectName, "object_name", []Kind{Text}},
		{ObjectID, "object_id", []Kind{Text, Set}},
		{RecommendationStatus, "recommendation_status", []Kind{Set}},
		{Currency, "currency", []Kind{Set}},
		{DueDate, "due_date", []Kind{Date}},
		{RecommendationCompletedDate, "completed_date", []Kind{Date}},
		{LossEstimateBeforeValue, "loss_estimate_before", []Kind{Number}},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			s, ok := Lookup(tt.name)
			if !ok {
				t.Fatalf("Lookup(%s) missed", tt.name)
			}
			if s.StoragePath() != tt.path {
				t.Errorf("StoragePath() = %q, want %q", s.StoragePath(), tt.path)
			}
			if !slices.Equal(s.Kinds(), tt.kinds) {
				t.Errorf("Kinds() = %v, want %v", s.Kinds(), tt.kinds)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, ok := Lookup("NOPE"); ok {
		t.Fatal("expected miss for unknown field")
	}
}

func TestMustLookup_PanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustLookup("NOPE")
}

func TestAllowedOperators(t *testing.T) {
	if got := AllowedOperators(RecommendationTitle, Text); !slices.Equal(got, []Operator{Equals, Contains}) {
		t.Errorf("title text ops = %v", got)
	}
	if got := AllowedOperators(ObjectID, Text); !slices.Equal(got, []Operator{Equals}) {
		t.Errorf("object id text ops = %v", got)
	}
	if got := AllowedOperators(RecommendationStatus, Set); len(got) != 0 {
		t.Errorf("set ops = %v, want none", got)
	}
	if got := AllowedOperators(DueDate, Date); len(got) != 6 {
		t.Errorf("date ops = %v, want 6", got)
	}
	if got := AllowedOperators(DueDate, Text); len(got) != 0 {
		t.Errorf("disallowed kind returned ops %v", got)
	}
}

func TestSpec_AllowsOperator(t *testing.T) {
	s := MustLookup(ObjectID)
	if s.AllowsOperator(Text, Contains) {
		t.Error("OBJECT_ID must not allow CONTAINS")
	}
	if !s.AllowsOperator(Text, Equals) {
		t.Error("OBJECT_ID must allow EQUALS")
	}
	if !s.AllowsKind(Set) {
		t.Error("OBJECT_ID must allow SET")
	}
	if s.AllowsKind(Number) {
		t.Error("OBJECT_ID must not allow NUMBER")
	}
}

func TestSpec_ExactPath(t *testing.T) {
	if got := MustLookup(RecommendationTitle).ExactPath(); got != "recommendation_title_exact" {
		t.Errorf("title exact = %q", got)
	}
	if got := MustLookup(RecommendationStatus).ExactPath(); got != "recommendation_status" {
		t.Errorf("status exact = %q", got)
	}
	if got := MustLookup(ObjectID).SetPath(); got != "object_id_set" {
		t.Errorf("object id set = %q", got)
	}
	if got := MustLookup(RecommendationStatus).SetPath(); got != "recommendation_status" {
		t.Errorf("status set = %q", got)
	}
	if got := MustLookup(DueDate).SortPath(); got != "due_date" {
		t.Errorf("due date sort = %q", got)
	}
}

func TestAll_SortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != 12 {
		t.Fatalf("len(All()) = %d, want 12", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name() >= all[i].Name() {
			t.Fatalf("All() not sorted at %d", i)
		}
	}
}

func TestOperator_Classes(t *testing.T) {
	if !Contains.IsText() || InRange.IsText() {
		t.Error("IsText misclassified")
	}
	if Contains.IsComparison() || !InRange.IsComparison() || !Equals.IsComparison() {
		t.Error("IsComparison misclassified")
	}
	if Kind("BOOL").IsValid() {
		t.Error("unknown kind reported valid")
	}
}
