// Package record is the recommendation record returned by search and lookup.
package record

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Hash attribute names a record is stored under.
const (
	AttrID                 = "id"
	AttrRecommendationID   = "recommendation_id"
	AttrTitle              = "recommendation_title"
	AttrBody               = "recommendation_body"
	AttrType               = "recommendation_type"
	AttrCategory           = "recommendation_category"
	AttrPriority           = "recommendation_priority"
	AttrStatus             = "recommendation_status"
	AttrSubmissionBaseNr   = "submission_base_nr"
	AttrSubmissionID       = "submission_id"
	AttrObjectID           = "object_id"
	AttrObjectName         = "object_name"
	AttrRCID               = "rc_id"
	AttrLossEstimateBefore = "loss_estimate_before"
	AttrLossEstimateAfter  = "loss_estimate_after"
	AttrCurrency           = "currency"
	AttrDueDate            = "due_date"
	AttrCompletedDate      = "completed_date"
	// AttrSeq is the insertion sequence, the final tie-break of every ordering.
	AttrSeq = "seq"
)

// MaxIDLength bounds record identifiers.
const MaxIDLength = 128

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Record is a recommendation scoped to one submission base number.
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
	// Seq is assigned by storage on first insert.
	Seq int64
}

// ValidateID checks a record identifier.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("record id is required")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("record id too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("record id must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// Validate checks that r can be stored.
func (r *Record) Validate() error {
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	if strings.TrimSpace(r.SubmissionBaseNr) == "" {
		return fmt.Errorf("record %s: submission base number is required", r.ID)
	}
	if strings.ContainsFunc(r.SubmissionBaseNr, unicode.IsControl) {
		return fmt.Errorf("record %s: submission base number contains control characters", r.ID)
	}
	return nil
}

// BelongsTo reports whether the record is scoped to tenant key k.
func (r *Record) BelongsTo(k string) bool {
	return k != "" && r.SubmissionBaseNr == k
}
