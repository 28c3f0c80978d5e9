package record

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"rec-1", false},
		{"REC_2024_001", false},
		{"", true},
		{"has space", true},
		{"semi;colon", true},
		{"a/b", true},
		{strings.Repeat("x", MaxIDLength), false},
		{strings.Repeat("x", MaxIDLength+1), true},
	}
	for _, tt := range tests {
		if err := ValidateID(tt.id); (err != nil) != tt.wantErr {
			t.Errorf("ValidateID(%q) err = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestRecord_Validate(t *testing.T) {
	r := Record{ID: "rec-1", SubmissionBaseNr: "SUB1"}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.SubmissionBaseNr = "  "
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for blank tenant")
	}
	r.SubmissionBaseNr = "SUB1\x1fSUB2"
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for control characters in tenant")
	}
}

func TestRecord_BelongsTo(t *testing.T) {
	r := Record{ID: "rec-1", SubmissionBaseNr: "SUB1"}
	if !r.BelongsTo("SUB1") {
		t.Error("expected record to belong to SUB1")
	}
	if r.BelongsTo("SUB2") || r.BelongsTo("") {
		t.Error("record must not belong to other or empty tenant")
	}
}
