package record

import (
	"github.com/kailas-cloud/recsearch/internal/db"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
)

// exactSeparator keeps whole values together in every TAG field. Titles
// and tenant keys may contain the default comma separator.
const exactSeparator = "\x1f"

// BuildIndex derives the index definition from the field catalog.
// TEXT fields get a partial representation (TEXT WITHSUFFIXTRIE) and an
// exact one (TAG aliased <path>_exact); a TEXT field that also accepts SET
// gets a case-sensitive TAG aliased <path>_set. SET fields are case-sensitive
// TAGs, NUMBER and DATE fields sortable NUMERICs. The tenant key is a
// single case-sensitive tag.
func BuildIndex(l Layout) *db.IndexDefinition {
	b := db.NewIndex(l.IndexName()).
		Prefix(l.RecordPrefix()).
		NoStopWords()

	for _, spec := range field.All() {
		path := spec.StoragePath()
		switch {
		case spec.AllowsKind(field.Text):
			b.Field(db.IndexField{Name: path, Type: db.IndexFieldText, WithSuffixTrie: true})
			b.Field(db.IndexField{
				Name:         path,
				Alias:        spec.ExactPath(),
				Type:         db.IndexFieldTag,
				TagSeparator: exactSeparator,
				Sortable:     true,
			})
			if spec.AllowsKind(field.Set) {
				b.Field(db.IndexField{
					Name:             path,
					Alias:            spec.SetPath(),
					Type:             db.IndexFieldTag,
					TagSeparator:     exactSeparator,
					TagCaseSensitive: true,
				})
			}
		case spec.AllowsKind(field.Set):
			b.Field(db.IndexField{
				Name:             path,
				Type:             db.IndexFieldTag,
				TagSeparator:     exactSeparator,
				TagCaseSensitive: true,
				Sortable:         true,
			})
		default:
			b.SortableNumeric(path)
		}
	}

	return b.
		TagWithOpts(domrec.AttrSubmissionBaseNr, exactSeparator, true).
		TagWithOpts(domrec.AttrID, exactSeparator, true).
		SortableNumeric(domrec.AttrSeq).
		MustBuild()
}
