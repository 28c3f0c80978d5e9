// Package record serves tenant-scoped record lookups.
package record

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recsearch/internal/domain"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	"github.com/kailas-cloud/recsearch/internal/logger"
)

// Service looks up records on behalf of a tenant.
type Service struct {
	repo Repository
}

// New creates a record service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns record id if it belongs to key. Records of other tenants are
// reported as not found.
func (s *Service) Get(ctx context.Context, key tenant.Key, id string) (domrec.Record, error) {
	if key.IsZero() {
		return domrec.Record{}, domain.ErrUnresolvedTenant
	}
	if err := domrec.ValidateID(id); err != nil {
		return domrec.Record{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("get record: %w", err)
	}
	if !rec.BelongsTo(key.String()) {
		logger.FromContext(ctx).Debug("record belongs to another tenant",
			zap.String("id", id))
		return domrec.Record{}, fmt.Errorf("get record: %w", domain.ErrNotFound)
	}
	return rec, nil
}
