package record

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/recsearch/internal/db"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	hdelFn        func(ctx context.Context, key string, fields ...string) error
	incrFn        func(ctx context.Context, key string) (int64, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HDel(ctx context.Context, key string, fields ...string) error {
	if m.hdelFn != nil {
		return m.hdelFn(ctx, key, fields...)
	}
	return nil
}

func (m *mockStore) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key)
	}
	return 1, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, NewLayout("recsearch:")), ms
}

func testRecord(t *testing.T) domrec.Record {
	t.Helper()
	before := 1500.5
	due := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	return domrec.Record{
		ID:                 "rec-1",
		Title:              "Fire door blocked",
		Status:             "OPEN",
		SubmissionBaseNr:   "SUB100",
		ObjectName:         "Hall B",
		LossEstimateBefore: &before,
		Currency:           "EUR",
		DueDate:            &due,
	}
}
