// Package config loads the service configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/recsearch/internal/domain/search/page"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	"github.com/kailas-cloud/recsearch/internal/logger"
)

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds the recsearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Search   SearchConfig   `yaml:"search"`
	Tenant   TenantConfig   `yaml:"tenant"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	QueryTimeoutMs   int      `yaml:"query_timeout_ms"`
	// SeedFile is a YAML fixture file loaded into the memory driver at startup.
	SeedFile string `yaml:"seed_file"`
}

// BreakerConfig holds circuit breaker settings for the storage client.
type BreakerConfig struct {
	Enabled     bool    `yaml:"enabled"`
	MaxRequests uint32  `yaml:"max_requests"`
	IntervalSec int     `yaml:"interval_sec"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MinRequests uint32  `yaml:"min_requests"`
	FailureRate float64 `yaml:"failure_rate"`
}

// SearchConfig holds index and paging settings.
type SearchConfig struct {
	KeyPrefix   string `yaml:"key_prefix"`
	MaxWindow   int    `yaml:"max_window"`
	MaxSortKeys int    `yaml:"max_sort_keys"`
	LastRow     string `yaml:"last_row"` // running, sentinel (default: running)
}

// TenantConfig holds tenant resolution settings.
type TenantConfig struct {
	Header  string `yaml:"header"`
	Pattern string `yaml:"pattern"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.QueryTimeoutMs <= 0 {
		c.Database.QueryTimeoutMs = 5000
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
	if c.Breaker.TimeoutSec <= 0 {
		c.Breaker.TimeoutSec = 30
	}
	if c.Breaker.MinRequests == 0 {
		c.Breaker.MinRequests = 10
	}
	if c.Breaker.FailureRate <= 0 {
		c.Breaker.FailureRate = 0.5
	}
	if c.Search.KeyPrefix == "" {
		c.Search.KeyPrefix = "recsearch:"
	}
	if c.Search.MaxWindow <= 0 {
		c.Search.MaxWindow = request.DefaultMaxWindow
	}
	if c.Search.MaxSortKeys <= 0 {
		c.Search.MaxSortKeys = request.DefaultMaxSortKeys
	}
	if c.Search.LastRow == "" {
		c.Search.LastRow = string(page.Running)
	}
	if c.Tenant.Header == "" {
		c.Tenant.Header = "submission-id"
	}
	if c.Tenant.Pattern == "" {
		c.Tenant.Pattern = tenant.DefaultPattern
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
		if c.Database.SeedFile != "" {
			return fmt.Errorf("database.seed_file is only supported by the memory driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverMemory, c.Database.Driver)
	}
	if c.Breaker.FailureRate > 1 {
		return fmt.Errorf("breaker.failure_rate must be in (0, 1], got %g", c.Breaker.FailureRate)
	}
	if _, err := page.ParseMode(c.Search.LastRow); err != nil {
		return fmt.Errorf("search.last_row: %w", err)
	}
	if _, err := tenant.NewResolver(c.Tenant.Pattern); err != nil {
		return fmt.Errorf("tenant.pattern: %w", err)
	}
	if c.Logging.Level != "" {
		if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	for i, k := range c.Auth.APIKeys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("auth.api_keys[%d] is empty", i)
		}
	}
	return nil
}

// QueryTimeout returns the per-request storage deadline.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Database.QueryTimeoutMs) * time.Millisecond
}

// SearchLimits returns the request limits.
func (c *Config) SearchLimits() request.Limits {
	return request.Limits{MaxWindow: c.Search.MaxWindow, MaxSortKeys: c.Search.MaxSortKeys}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
