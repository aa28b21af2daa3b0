// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultTables are the racing tables exposed through the generic API.
var DefaultTables = []string{"drivers", "constructors", "results", "constructor_results", "races"}

// Standings defaults.
const (
	DefaultStandingsSeason           = 2024
	DefaultConstructorStandingsLimit = 10
	DefaultDriverStandingsLimit      = 22
	DefaultTopDriversByWinsLimit     = 10
)

// Config holds the configuration for the HTTP API and its store.
type Config struct {
	DBDriver      string        // store driver: "sqlite3" (default) or "duckdb"
	DBPath        string        // path to the store file
	ReadPoolSize  int           // read pool size for SQLite (default 4)
	RunMigrations bool          // create the racing tables on startup (SQLite only)
	SeedDemo      bool          // seed a small demo season into an empty store
	StoreTimeout  time.Duration // per-operation store timeout (default 5s)
	Tables        []string      // tables to introspect and expose
	ListenAddr    string        // HTTP listen address (default ":8080")
	LogLevel      string        // log level: debug, info, warn, error (default "info")
	Env           string        // environment: "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	Standings StandingsConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NewLogger returns the process logger: JSON in production, text otherwise.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBDriver:      os.Getenv("DB_DRIVER"),
		DBPath:        os.Getenv("DB_PATH"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
		RunMigrations: parseBoolEnvDefault("RUN_MIGRATIONS", false),
		SeedDemo:      parseBoolEnvDefault("SEED_DEMO", false),
	}

	if v := os.Getenv("READ_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("READ_POOL_SIZE must be a positive integer, got %q", v)
		}
		cfg.ReadPoolSize = n
	}
	if v := os.Getenv("STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("STORE_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.StoreTimeout = d
	}
	if v := os.Getenv("TABLES"); v != "" {
		tables := strings.Split(v, ",")
		for i := range tables {
			tables[i] = strings.TrimSpace(tables[i])
		}
		cfg.Tables = compactNonEmpty(tables)
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	standings, err := loadStandingsFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Standings = standings

	// Defaults
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite3"
	}
	if cfg.DBDriver != "sqlite3" && cfg.DBDriver != "duckdb" {
		return nil, fmt.Errorf("DB_DRIVER must be \"sqlite3\" or \"duckdb\", got %q", cfg.DBDriver)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "racing.sqlite"
	}
	if cfg.ReadPoolSize == 0 {
		cfg.ReadPoolSize = 4
	}
	if cfg.StoreTimeout == 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if len(cfg.Tables) == 0 {
		cfg.Tables = append([]string(nil), DefaultTables...)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
		cfg.Warnings = append(cfg.Warnings, "CORS_ALLOWED_ORIGINS not set, allowing all origins")
	}
	if cfg.RunMigrations && cfg.DBDriver != "sqlite3" {
		cfg.Warnings = append(cfg.Warnings, "RUN_MIGRATIONS is only supported for sqlite3, ignoring")
		cfg.RunMigrations = false
	}

	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if cfg.RunMigrations {
			return nil, fmt.Errorf("RUN_MIGRATIONS must not be enabled in production (ENV=production)")
		}
		if cfg.SeedDemo {
			return nil, fmt.Errorf("SEED_DEMO must not be enabled in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	default:
		return defaultVal
	}
}

func parseIntEnv(key string) (int, bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, true, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
