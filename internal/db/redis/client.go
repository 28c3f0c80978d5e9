package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	Breaker  BreakerConfig
	Logger   *zap.Logger
}

// BreakerConfig tunes the circuit breaker in front of the client.
type BreakerConfig struct {
	Enabled bool
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts; 0 never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// MinRequests is the sample size before the failure rate is considered.
	MinRequests uint32
	FailureRate float64
}

// Store implements db.Store via rueidis for Redis 8+.
type Store struct {
	client  rueidis.Client
	breaker *gobreaker.TwoStepCircuitBreaker
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.AGGREGATE/FT.INFO parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s := &Store{client: client}
	if cfg.Breaker.Enabled {
		s.breaker = newBreaker(cfg.Breaker, cfg.Logger)
	}
	return s, nil
}

func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.TwoStepCircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        "redis",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.b().Ping().Build()
	if err := s.doErr(ctx, cmd); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// do runs cmd through the circuit breaker. Only transport failures count
// against the breaker: a server reply, even an error reply, means Redis is up.
func (s *Store) do(ctx context.Context, cmd rueidis.Completed) (rueidis.RedisResult, error) {
	if s.breaker == nil {
		return s.client.Do(ctx, cmd), nil
	}
	done, err := s.breaker.Allow()
	if err != nil {
		return rueidis.RedisResult{}, db.ErrCircuitOpen
	}
	res := s.client.Do(ctx, cmd)
	nre := res.NonRedisError()
	done(nre == nil || errors.Is(nre, context.Canceled))
	return res, nil
}

// doErr runs cmd and returns its error, if any.
func (s *Store) doErr(ctx context.Context, cmd rueidis.Completed) error {
	res, err := s.do(ctx, cmd)
	if err != nil {
		return err
	}
	return res.Error()
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
