package recsearch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "memory"
	addrs    []string
	password string

	keyPrefix   string
	lastRow     LastRowMode
	maxWindow   int
	maxSortKeys int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance with the
// query engine (Redis 8 or Redis Stack).
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps records in process memory. Data is lost on Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithKeyPrefix namespaces every key and the index. Default: "recsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithLastRowMode sets how Page.LastRow is reported before the final page.
// Default: LastRowRunning.
func WithLastRowMode(m LastRowMode) Option {
	return optionFunc(func(c *clientConfig) {
		c.lastRow = m
	})
}

// WithLimits bounds the window size and the number of sort keys per search.
func WithLimits(maxWindow, maxSortKeys int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxWindow = maxWindow
		c.maxSortKeys = maxSortKeys
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
