package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":7200", cfg.Addr)
	assert.Equal(t, "bolt", cfg.DBBackend)
	assert.Equal(t, "kosync.db", cfg.DBPath)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 120, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("KOSYNC_ADDR", ":9500")
	t.Setenv("KOSYNC_DB_BACKEND", "sqlite")
	t.Setenv("KOSYNC_DB_PATH", "/var/lib/kosync/data.db")
	t.Setenv("KOSYNC_JWT_SECRET", "supersecret")
	t.Setenv("KOSYNC_ACCESS_TOKEN_TTL", "1h30m")
	t.Setenv("KOSYNC_RATE_LIMIT", "60")
	t.Setenv("KOSYNC_LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, cfg.parseEnv())

	assert.Equal(t, ":9500", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.DBBackend)
	assert.Equal(t, "/var/lib/kosync/data.db", cfg.DBPath)
	assert.Equal(t, "supersecret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("KOSYNC_ACCESS_TOKEN_TTL", "soon")

		cfg := &Config{}
		cfg.LoadDefaults()
		assert.Error(t, cfg.parseEnv())
	})

	t.Run("bad rate limit", func(t *testing.T) {
		t.Setenv("KOSYNC_RATE_LIMIT", "lots")

		cfg := &Config{}
		cfg.LoadDefaults()
		assert.Error(t, cfg.parseEnv())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "sqlite backend", mutate: func(c *Config) { c.DBBackend = "sqlite" }, wantErr: false},
		{name: "unknown backend", mutate: func(c *Config) { c.DBBackend = "postgres" }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
