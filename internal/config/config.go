// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        // e.g. "8080"
	MetricsPort  string        // /metrics and /healthz, default "9090"
	Env          string        // "development" | "production"
	ReadTimeout  time.Duration // default 10s
	WriteTimeout time.Duration // default 10s
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
	QueryTimeout    time.Duration // per-call bound, default 3s
}

// RedisConfig holds the optional Redis connection for shared pending state.
// An empty Addr selects the in-process backend — fine for a single instance.
type RedisConfig struct {
	Addr string // e.g. "localhost:6379"; "" = disabled
}

// LedgerConfig holds ledger behaviour settings.
type LedgerConfig struct {
	PendingTTL  time.Duration // delete confirmations expire after this, default 15m
	RecentLimit int           // tickets shown by the list report, default 12
	WinsLimit   int           // tickets shown by the wins report, default 10
	ScanCap     int           // max tickets scanned per balance computation, default 5000
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Ledger LedgerConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns the first validation error encountered.
func (c *Config) Validate() error {
	var errs []error

	// In production, DB DSN must be explicit
	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}

	if c.Ledger.PendingTTL <= 0 {
		errs = append(errs, fmt.Errorf(
			"PENDING_TTL must be positive, got %s", c.Ledger.PendingTTL))
	}
	if c.Ledger.RecentLimit <= 0 || c.Ledger.WinsLimit <= 0 {
		errs = append(errs, fmt.Errorf(
			"list limits must be positive, got recent=%d wins=%d",
			c.Ledger.RecentLimit, c.Ledger.WinsLimit))
	}
	if c.Ledger.ScanCap <= 0 {
		errs = append(errs, fmt.Errorf(
			"BALANCE_SCAN_CAP must be positive, got %d", c.Ledger.ScanCap))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Port:         getEnv("SERVER_PORT", "8080"),
		MetricsPort:  getEnv("METRICS_PORT", "9090"),
		Env:          getEnv("ENVIRONMENT", "development"),
		ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "superquote"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		QueryTimeout:    getDuration("DB_QUERY_TIMEOUT", 3*time.Second),
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Addr: getEnv("REDIS_ADDR", ""),
	}

	// ── Ledger ────────────────────────────────────────────────────────────────
	recentLimit, err := getInt("RECENT_LIMIT", 12)
	if err != nil {
		return nil, fmt.Errorf("RECENT_LIMIT: %w", err)
	}
	winsLimit, err := getInt("WINS_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("WINS_LIMIT: %w", err)
	}
	scanCap, err := getInt("BALANCE_SCAN_CAP", 5000)
	if err != nil {
		return nil, fmt.Errorf("BALANCE_SCAN_CAP: %w", err)
	}

	cfg.Ledger = LedgerConfig{
		PendingTTL:  getDuration("PENDING_TTL", 15*time.Minute),
		RecentLimit: recentLimit,
		WinsLimit:   winsLimit,
		ScanCap:     scanCap,
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Log warning and fall back to default; do not crash on parse error
		return defaultVal
	}
	return d
}
