package record

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
)

// dateLayout is the calendar-day form fixture dates are written in.
const dateLayout = "2006-01-02"

type fixtureFile struct {
	Records []fixtureRecord `yaml:"records"`
}

type fixtureRecord struct {
	ID                 string   `yaml:"id"`
	RecommendationID   string   `yaml:"recommendation_id"`
	Title              string   `yaml:"title"`
	Body               string   `yaml:"body"`
	Type               string   `yaml:"type"`
	Category           string   `yaml:"category"`
	Priority           string   `yaml:"priority"`
	Status             string   `yaml:"status"`
	SubmissionBaseNr   string   `yaml:"submission_base_nr"`
	SubmissionID       string   `yaml:"submission_id"`
	ObjectID           string   `yaml:"object_id"`
	ObjectName         string   `yaml:"object_name"`
	RCID               string   `yaml:"rc_id"`
	LossEstimateBefore *float64 `yaml:"loss_estimate_before"`
	LossEstimateAfter  *float64 `yaml:"loss_estimate_after"`
	Currency           string   `yaml:"currency"`
	DueDate            string   `yaml:"due_date"`
	CompletedDate      string   `yaml:"completed_date"`
}

// DecodeFixtures reads records from a YAML document of the form
// `records: [{id: ..., title: ..., due_date: 2024-01-31}, ...]`.
func DecodeFixtures(r io.Reader) ([]domrec.Record, error) {
	var f fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	out := make([]domrec.Record, 0, len(f.Records))
	for i, fr := range f.Records {
		rec, err := fr.toRecord()
		if err != nil {
			return nil, fmt.Errorf("fixture %d: %w", i, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("fixture %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadFixtures reads fixture records from path.
func LoadFixtures(path string) ([]domrec.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return DecodeFixtures(f)
}

// Seed saves recs in order, so their insertion sequence follows the input.
// Returns the number of records created.
func (r *Repo) Seed(ctx context.Context, recs []domrec.Record) (int, error) {
	created := 0
	for _, rec := range recs {
		_, isNew, err := r.Save(ctx, rec)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", rec.ID, err)
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func (fr fixtureRecord) toRecord() (domrec.Record, error) {
	due, err := parseDay(fr.DueDate)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("due_date: %w", err)
	}
	completed, err := parseDay(fr.CompletedDate)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("completed_date: %w", err)
	}
	return domrec.Record{
		ID:                 fr.ID,
		RecommendationID:   fr.RecommendationID,
		Title:              fr.Title,
		Body:               fr.Body,
		Type:               fr.Type,
		Category:           fr.Category,
		Priority:           fr.Priority,
		Status:             fr.Status,
		SubmissionBaseNr:   fr.SubmissionBaseNr,
		SubmissionID:       fr.SubmissionID,
		ObjectID:           fr.ObjectID,
		ObjectName:         fr.ObjectName,
		RCID:               fr.RCID,
		LossEstimateBefore: fr.LossEstimateBefore,
		LossEstimateAfter:  fr.LossEstimateAfter,
		Currency:           fr.Currency,
		DueDate:            due,
		CompletedDate:      completed,
	}, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
