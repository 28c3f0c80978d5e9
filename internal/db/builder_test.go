package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("rec:").
		Tag("status").
		Numeric("loss").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "status" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want status TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "loss" || idx.Fields[1].Type != IndexFieldNumeric {
		t.Errorf("field[1] = %+v, want loss NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_TagOptions(t *testing.T) {
	idx := NewIndex("tag-idx").
		Prefix("t:").
		TagWithOpts("tags", "|", true).
		MustBuild()

	f := idx.Fields[0]
	if f.TagSeparator != "|" {
		t.Errorf("separator = %q, want |", f.TagSeparator)
	}
	if !f.TagCaseSensitive {
		t.Error("expected TagCaseSensitive=true")
	}
}

func TestIndexBuilder_SortableAndSuffixTrie(t *testing.T) {
	idx := NewIndex("rec-idx").
		NoStopWords().
		SortableNumeric("seq").
		Field(IndexField{Name: "title", Type: IndexFieldText, WithSuffixTrie: true}).
		Field(IndexField{Name: "title", Alias: "title_exact", Type: IndexFieldTag, Sortable: true}).
		MustBuild()

	if !idx.NoStopWords {
		t.Error("expected NoStopWords")
	}
	if !idx.Fields[0].Sortable {
		t.Error("seq must be sortable")
	}
	f, ok := idx.Field("title_exact")
	if !ok || f.Name != "title" || f.Type != IndexFieldTag {
		t.Errorf("Field(title_exact) = %+v, %v", f, ok)
	}
	if _, ok := idx.Field("missing"); ok {
		t.Error("expected miss")
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Tag("x").
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "suffix trie on numeric",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Field(IndexField{Name: "n", Type: IndexFieldNumeric, WithSuffixTrie: true}).Build()
			},
			wantErr: "WITHSUFFIXTRIE",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x").Build()
			},
			wantErr: "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("rec:").
		NoStopWords().
		Field(IndexField{Name: "title", Type: IndexFieldText, WithSuffixTrie: true}).
		Field(IndexField{Name: "title", Alias: "title_exact", Type: IndexFieldTag, Sortable: true}).
		MustBuild()

	want := "FT.CREATE my-idx ON HASH PREFIX rec: STOPWORDS 0 SCHEMA " +
		"title TEXT WITHSUFFIXTRIE title AS title_exact TAG SORTABLE"
	if s := idx.String(); s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}

func TestIndexDefinition_AliasAllowsSameSource(t *testing.T) {
	idx := &IndexDefinition{
		Name:     "alias-idx",
		Prefixes: []string{"a:"},
		Fields: []IndexField{
			{Name: "field", Type: IndexFieldText},
			{Name: "field", Alias: "field_exact", Type: IndexFieldTag},
		},
	}

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexBuilder_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Name: "field1", Type: IndexFieldTag},
			{Name: "field1", Type: IndexFieldNumeric},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate fields")
	}
}

func TestCheckScoped(t *testing.T) {
	if err := CheckScoped(nil); err != ErrUnscopedQuery {
		t.Errorf("CheckScoped(nil) = %v", err)
	}
}
