package recsearch

import (
	"time"

	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
	"github.com/kailas-cloud/recsearch/internal/domain/search/page"
)

// Field is a searchable record attribute.
type Field string

// Searchable fields.
const (
	FieldTitle              Field = Field(field.RecommendationTitle)
	FieldObjectName         Field = Field(field.ObjectName)
	FieldObjectID           Field = Field(field.ObjectID)
	FieldStatus             Field = Field(field.RecommendationStatus)
	FieldPriority           Field = Field(field.RecommendationPriority)
	FieldCategory           Field = Field(field.RecommendationCategory)
	FieldType               Field = Field(field.RecommendationType)
	FieldCurrency           Field = Field(field.Currency)
	FieldDueDate            Field = Field(field.DueDate)
	FieldCompletedDate      Field = Field(field.RecommendationCompletedDate)
	FieldLossEstimateBefore Field = Field(field.LossEstimateBeforeValue)
	FieldLossEstimateAfter  Field = Field(field.LossEstimateAfterValue)
)

// Operator is a comparison for number and date filters.
type Operator string

// Comparison operators.
const (
	OpEquals             Operator = Operator(field.Equals)
	OpLessThan           Operator = Operator(field.LessThan)
	OpLessThanOrEqual    Operator = Operator(field.LessThanOrEqual)
	OpGreaterThan        Operator = Operator(field.GreaterThan)
	OpGreaterThanOrEqual Operator = Operator(field.GreaterThanOrEqual)
)

// LastRowMode controls Page.LastRow before the final page.
type LastRowMode string

// Last-row modes.
const (
	// LastRowRunning reports the rows reached so far.
	LastRowRunning LastRowMode = LastRowMode(page.Running)
	// LastRowSentinel reports -1 until the final page.
	LastRowSentinel LastRowMode = LastRowMode(page.Sentinel)
)

// Record is a recommendation.
type Record struct {
	ID                 string
	RecommendationID   string
	Title              string
	Body               string
	Type               string
	Category           string
	Priority           string
	Status             string
	SubmissionBaseNr   string
	SubmissionID       string
	ObjectID           string
	ObjectName         string
	RCID               string
	LossEstimateBefore *float64
	LossEstimateAfter  *float64
	Currency           string
	DueDate            *time.Time
	CompletedDate      *time.Time
}

// Page is one window of search results.
type Page struct {
	Rows []Record
	// LastRow is the absolute row count reached, or -1 in sentinel mode
	// while more rows may exist.
	LastRow int
	// Total is the number of matching records.
	Total int
	// End reports whether this is the final page.
	End bool
}

func recordToDomain(r Record) domrec.Record {
	return domrec.Record{
		ID:                 r.ID,
		RecommendationID:   r.RecommendationID,
		Title:              r.Title,
		Body:               r.Body,
		Type:               r.Type,
		Category:           r.Category,
		Priority:           r.Priority,
		Status:             r.Status,
		SubmissionBaseNr:   r.SubmissionBaseNr,
		SubmissionID:       r.SubmissionID,
		ObjectID:           r.ObjectID,
		ObjectName:         r.ObjectName,
		RCID:               r.RCID,
		LossEstimateBefore: r.LossEstimateBefore,
		LossEstimateAfter:  r.LossEstimateAfter,
		Currency:           r.Currency,
		DueDate:            r.DueDate,
		CompletedDate:      r.CompletedDate,
	}
}

func recordFromDomain(r *domrec.Record) Record {
	return Record{
		ID:                 r.ID,
		RecommendationID:   r.RecommendationID,
		Title:              r.Title,
		Body:               r.Body,
		Type:               r.Type,
		Category:           r.Category,
		Priority:           r.Priority,
		Status:             r.Status,
		SubmissionBaseNr:   r.SubmissionBaseNr,
		SubmissionID:       r.SubmissionID,
		ObjectID:           r.ObjectID,
		ObjectName:         r.ObjectName,
		RCID:               r.RCID,
		LossEstimateBefore: r.LossEstimateBefore,
		LossEstimateAfter:  r.LossEstimateAfter,
		Currency:           r.Currency,
		DueDate:            r.DueDate,
		CompletedDate:      r.CompletedDate,
	}
}

func pageFromDomain(p page.Page) Page {
	rows := make([]Record, len(p.Rows))
	for i := range p.Rows {
		rows[i] = recordFromDomain(&p.Rows[i])
	}
	return Page{Rows: rows, LastRow: p.LastRow, Total: p.Total, End: p.End}
}
