package recsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/recsearch/internal/db/redis"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/page"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	recordrepo "github.com/kailas-cloud/recsearch/internal/repository/record"
	searchrepo "github.com/kailas-cloud/recsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/recsearch/internal/usecase/health"
	recorduc "github.com/kailas-cloud/recsearch/internal/usecase/record"
	searchuc "github.com/kailas-cloud/recsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "recsearch:"
)

// Internal interfaces, swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, key tenant.Key, req request.Request) (page.Page, error)
}

type recordUseCase interface {
	Get(ctx context.Context, key tenant.Key, id string) (domrec.Record, error)
}

type recordWriter interface {
	Save(ctx context.Context, rec domrec.Record) (domrec.Record, bool, error)
}

// Client is the recsearch SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	recordSvc recordUseCase
	writer    recordWriter
	healthSvc healthUseCase
	limits    request.Limits
	obs       *observer
}

// New creates a Client, connects to the database and ensures the search index.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: defaultKeyPrefix,
		lastRow:   LastRowRunning,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("recsearch: storage required (use WithRedis or WithMemory)")
	}
	mode, err := page.ParseMode(string(cfg.lastRow))
	if err != nil {
		return nil, fmt.Errorf("recsearch: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("recsearch: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg, mode, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		if len(cfg.addrs) == 0 {
			return nil, errors.New("recsearch: database address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("recsearch: create redis store: %w", err)
		}
		return s, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("recsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, mode page.Mode, obs *observer) (*Client, error) {
	layout := recordrepo.NewLayout(cfg.keyPrefix)
	records := recordrepo.New(store, layout)
	if err := records.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("recsearch: ensure index: %w", err)
	}

	limits := request.DefaultLimits()
	if cfg.maxWindow > 0 {
		limits.MaxWindow = cfg.maxWindow
	}
	if cfg.maxSortKeys > 0 {
		limits.MaxSortKeys = cfg.maxSortKeys
	}

	return &Client{
		store:     store,
		searchSvc: searchuc.New(searchrepo.New(store, layout), mode),
		recordSvc: recorduc.New(records),
		writer:    records,
		healthSvc: healthuc.New(store, store, layout.IndexName()),
		limits:    limits,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Records returns the record service.
func (c *Client) Records() *RecordService {
	return &RecordService{get: c.recordSvc, writer: c.writer, obs: c.obs}
}

// Search starts a search scoped to the tenant with submission base number
// tenantKey.
func (c *Client) Search(tenantKey string) *SearchBuilder {
	return newSearchBuilder(c.searchSvc, tenantKey, c.limits, c.obs)
}
