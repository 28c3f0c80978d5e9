package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recsearch/internal/config"
	"github.com/kailas-cloud/recsearch/internal/db"
	"github.com/kailas-cloud/recsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/recsearch/internal/db/redis"
	"github.com/kailas-cloud/recsearch/internal/domain/search/page"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	logpkg "github.com/kailas-cloud/recsearch/internal/logger"
	"github.com/kailas-cloud/recsearch/internal/metrics"
	recordrepo "github.com/kailas-cloud/recsearch/internal/repository/record"
	searchrepo "github.com/kailas-cloud/recsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/recsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/recsearch/internal/usecase/health"
	recorduc "github.com/kailas-cloud/recsearch/internal/usecase/record"
	searchuc "github.com/kailas-cloud/recsearch/internal/usecase/search"
	"github.com/kailas-cloud/recsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("last_row_mode", cfg.Search.LastRow),
	)

	store, err := newStore(&cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	layout := recordrepo.NewLayout(cfg.Search.KeyPrefix)
	recordRepo := recordrepo.New(store, layout)
	if err := recordRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create search index", zap.Error(err))
	}
	if cfg.Database.SeedFile != "" {
		if err := seed(ctx, recordRepo, cfg.Database.SeedFile, logger); err != nil {
			logger.Fatal("Failed to seed records", zap.Error(err))
		}
	}

	mode, err := page.ParseMode(cfg.Search.LastRow)
	if err != nil {
		logger.Fatal("Invalid last-row mode", zap.Error(err))
	}
	resolver, err := tenant.NewResolver(cfg.Tenant.Pattern)
	if err != nil {
		logger.Fatal("Invalid tenant pattern", zap.Error(err))
	}

	// Create use case services
	searchSvc := searchuc.New(searchrepo.New(store, layout), mode)
	recordSvc := recorduc.New(recordRepo)
	healthSvc := healthuc.New(store, store, layout.IndexName())

	server := chiTransport.NewServer(searchSvc, recordSvc, healthSvc, cfg.SearchLimits(), logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.Handler(server, chiTransport.ServerOptions{
		BaseRouter: r,
		APIMiddlewares: []func(http.Handler) http.Handler{
			chiTransport.TenantMiddleware(resolver, cfg.Tenant.Header),
			chiMiddleware.Timeout(cfg.QueryTimeout()),
		},
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, _ error) {
			writeJSONError(w, http.StatusBadRequest, "bad_request", "invalid request")
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newStore creates the database store for the configured driver.
func newStore(cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
			Breaker: dbRedis.BreakerConfig{
				Enabled:     cfg.Breaker.Enabled,
				MaxRequests: cfg.Breaker.MaxRequests,
				Interval:    time.Duration(cfg.Breaker.IntervalSec) * time.Second,
				Timeout:     time.Duration(cfg.Breaker.TimeoutSec) * time.Second,
				MinRequests: cfg.Breaker.MinRequests,
				FailureRate: cfg.Breaker.FailureRate,
			},
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// seed loads fixture records into the store.
func seed(ctx context.Context, repo *recordrepo.Repo, path string, logger *zap.Logger) error {
	recs, err := recordrepo.LoadFixtures(path)
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	n, err := repo.Seed(ctx, recs)
	if err != nil {
		return fmt.Errorf("seed after %d records: %w", n, err)
	}
	logger.Info("Seeded records", zap.String("file", path), zap.Int("records", n))
	return nil
}
