package recsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
)

// RecordService reads and writes records.
type RecordService struct {
	get    recordUseCase
	writer recordWriter
	obs    *observer
}

// Save creates or replaces a record. It returns true if the record was new.
// Replacing a record keeps its position in the insertion order.
func (s *RecordService) Save(ctx context.Context, rec Record) (created bool, err error) {
	start := time.Now()
	defer func() {
		s.obs.observe("record.save", start, err, slog.String("id", rec.ID), slog.Bool("created", created))
	}()

	_, created, err = s.writer.Save(ctx, recordToDomain(rec))
	if err != nil {
		return false, fmt.Errorf("save record: %w", err)
	}
	return created, nil
}

// Get returns record id if it belongs to tenantKey. Records of other
// tenants are reported as ErrNotFound.
func (s *RecordService) Get(ctx context.Context, tenantKey, id string) (_ Record, err error) {
	start := time.Now()
	defer func() {
		s.obs.observe("record.get", start, err, slog.String("tenant", tenantKey), slog.String("id", id))
	}()

	key, err := tenant.NewKey(tenantKey)
	if err != nil {
		return Record{}, fmt.Errorf("get record: %w", err)
	}
	rec, err := s.get.Get(ctx, key, id)
	if err != nil {
		return Record{}, err
	}
	return recordFromDomain(&rec), nil
}
