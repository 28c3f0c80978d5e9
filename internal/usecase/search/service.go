// Package search runs a filter/sort/window request against the record index.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recsearch/internal/domain"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/page"
	"github.com/kailas-cloud/recsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	"github.com/kailas-cloud/recsearch/internal/logger"
	"github.com/kailas-cloud/recsearch/internal/metrics"
)

// Service compiles requests and runs list and count for them.
type Service struct {
	repo Repository
	mode page.Mode
}

// New creates a search service. mode controls lastRow on non-final pages.
func New(repo Repository, mode page.Mode) *Service {
	if mode == "" {
		mode = page.Running
	}
	return &Service{repo: repo, mode: mode}
}

// Search compiles req for tenant key and returns one page of results.
// Validation happens before any storage call. List and count run
// concurrently over the same plan; a failure in either cancels the other.
func (s *Service) Search(ctx context.Context, key tenant.Key, req request.Request) (page.Page, error) {
	log := logger.FromContext(ctx)

	compileStart := time.Now()
	p, err := plan.Compile(key, req.Filters())
	metrics.ObserveStage("compile", compileStart)
	if err != nil {
		var ife *domain.InvalidFilterError
		if errors.As(err, &ife) {
			metrics.FiltersRejectedTotal.WithLabelValues(ife.Reason).Inc()
		}
		return page.Page{}, fmt.Errorf("compile filters: %w", err)
	}

	log.Debug("search plan compiled",
		zap.Int("search_clauses", len(p.Search())),
		zap.Int("match_clauses", len(p.Match())),
		zap.Int("sort_keys", len(req.Sort())),
		zap.Int("start_row", req.Window().Start),
		zap.Int("end_row", req.Window().End),
		zap.Bool("unsatisfiable", p.Unsatisfiable()),
	)
	if p.Unsatisfiable() {
		metrics.UnsatisfiablePlansTotal.Inc()
	}

	var (
		rows  []domrec.Record
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		defer metrics.ObserveStage(string(p.Stage()), start)
		var err error
		rows, err = s.repo.List(gctx, p, req.Sort(), req.Window())
		return err
	})
	g.Go(func() error {
		start := time.Now()
		defer metrics.ObserveStage(string(domain.StageCount), start)
		var err error
		total, err = s.repo.Count(gctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			stage := domain.StageOf(err)
			metrics.StorageFailuresTotal.WithLabelValues(string(stage)).Inc()
			log.Warn("search storage failure", zap.String("stage", string(stage)), zap.Error(err))
		}
		return page.Page{}, fmt.Errorf("execute plan: %w", err)
	}

	return page.Assemble(rows, req.Window(), total, s.mode), nil
}
