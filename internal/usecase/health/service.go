package health

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckIndexing indicates an index still being built. Queries answer
	// from the documents indexed so far; it is not a failure.
	CheckIndexing CheckResult = "indexing"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Documents is the number of indexed records, when known.
	Documents int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexInspector
	indexName string
}

// New creates a Service. index can be nil.
func New(pinger DBPinger, index IndexInspector, indexName string) *Service {
	return &Service{db: pinger, index: index, indexName: indexName}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	report := Report{Checks: checks}

	if err := s.db.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("database ping failed", zap.Error(err))
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.index != nil {
		checks["index"], report.Documents = s.checkIndex(ctx)
	}

	report.Status = Healthy
	for _, v := range checks {
		if v == CheckError {
			report.Status = Degraded
			break
		}
	}
	return report
}

func (s *Service) checkIndex(ctx context.Context) (CheckResult, int) {
	info, err := s.index.IndexInfo(ctx, s.indexName)
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		return CheckError, 0
	case err != nil:
		logger.FromContext(ctx).Warn("index info failed", zap.Error(err))
		return CheckError, 0
	case info.Indexing:
		return CheckIndexing, info.NumDocs
	default:
		return CheckOK, info.NumDocs
	}
}
