package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "JWT_SECRET_KEY", "DD_DATABASE_URL", "DD_SECURITY_JWT_SECRET", "DD_SERVER_PORT", "DD_DATABASE_DRIVER"} {
		t.Setenv(key, "")
	}
}

// TestLoadDefaults checks the values used when no file or environment is present.
func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.Debug)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Contains(t, cfg.Database.URL, "postgres://")
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQueryThreshold)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.Equal(t, "change-me-in-production", cfg.Security.JWTSecret)
	assert.Equal(t, 100, cfg.Security.RateLimit)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9100
  debug: true
database:
  driver: SQLite
  url: /tmp/diagrams.db
security:
  jwt_secret: file-secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/diagrams.db", cfg.Database.URL)
	assert.Equal(t, "file-secret", cfg.Security.JWTSecret)
}

func TestEnvironmentVariableOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("DD_SERVER_PORT", "9999")
	t.Setenv("DD_SERVER_HOST", "127.0.0.1")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/models")
	t.Setenv("JWT_SECRET_KEY", "from-env")

	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "postgres://u:p@db:5432/models", cfg.Database.URL)
	assert.Equal(t, "from-env", cfg.Security.JWTSecret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8000},
			Database: DatabaseConfig{Driver: DriverPostgres, URL: "postgres://localhost/db"},
			Security: SecurityConfig{JWTSecret: "secret"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid configuration", mutate: func(*Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, errMsg: "invalid server port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, errMsg: "invalid server port"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, errMsg: "unsupported database driver"},
		{name: "missing url", mutate: func(c *Config) { c.Database.URL = "" }, errMsg: "database url is required"},
		{name: "negative pool", mutate: func(c *Config) { c.Database.MaxOpenConns = -1 }, errMsg: "pool sizes"},
		{name: "blank secret", mutate: func(c *Config) { c.Security.JWTSecret = "  " }, errMsg: "jwt_secret is required"},
		{name: "negative rate limit", mutate: func(c *Config) { c.Security.RateLimit = -5 }, errMsg: "invalid rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestServerAddress(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8000", ServerConfig{Host: "127.0.0.1", Port: 8000}.Address())
}
