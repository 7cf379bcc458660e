// Package config handles configuration for the server: defaults first, then
// a KOSYNC_* environment overlay, then command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the kosyncd server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DBBackend: storage backend, "bolt" or "sqlite".
//   - DBPath: database file path (":memory:" works for sqlite).
//   - JWTSecret: HMAC secret for signing access tokens (HS256). Leave empty
//     to have the server generate a random one at startup; tokens then
//     don't survive restarts, which legacy header-auth clients never notice.
//   - AccessTokenTTL: access token lifetime.
//   - RateLimit / RateWindow: per-client request budget.
//   - LogLevel: slog level name ("debug", "info", "warn", "error").
type Config struct {
	Addr           string
	DBBackend      string
	DBPath         string
	JWTSecret      string
	AccessTokenTTL time.Duration
	RateLimit      int
	RateWindow     time.Duration
	LogLevel       string
}

// LoadDefaults populates Config with development defaults
func (c *Config) LoadDefaults() {
	c.Addr = ":7200"
	c.DBBackend = "bolt"
	c.DBPath = "kosync.db"
	c.JWTSecret = ""
	c.AccessTokenTTL = 24 * time.Hour
	c.RateLimit = 120
	c.RateWindow = time.Minute
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying
// environment variables and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.parseEnv(); err != nil {
		return nil, err
	}
	cfg.parseFlags()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseEnv overlays KOSYNC_* environment variables
func (c *Config) parseEnv() error {
	if v := os.Getenv("KOSYNC_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("KOSYNC_DB_BACKEND"); v != "" {
		c.DBBackend = v
	}
	if v := os.Getenv("KOSYNC_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("KOSYNC_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("KOSYNC_ACCESS_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid KOSYNC_ACCESS_TOKEN_TTL: %w", err)
		}
		c.AccessTokenTTL = ttl
	}
	if v := os.Getenv("KOSYNC_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid KOSYNC_RATE_LIMIT: %w", err)
		}
		c.RateLimit = limit
	}
	if v := os.Getenv("KOSYNC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// parseFlags overlays command-line flags on top of env values
func (c *Config) parseFlags() {
	flag.StringVar(&c.Addr, "addr", c.Addr, "HTTP bind address")
	flag.StringVar(&c.DBBackend, "db-backend", c.DBBackend, "Storage backend: bolt or sqlite")
	flag.StringVar(&c.DBPath, "db", c.DBPath, "Path to the database file")
	flag.StringVar(&c.JWTSecret, "jwt-secret", c.JWTSecret, "HMAC secret for access tokens (empty = random per start)")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	flag.Parse()
}

func (c *Config) validate() error {
	switch c.DBBackend {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("unknown db backend %q (want bolt or sqlite)", c.DBBackend)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.RateLimit)
	}
	return nil
}
