package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "json", cfg.Server.LogFormat)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/cartly.sqlite", cfg.Database.Path)

	require.Equal(t, "cartly", cfg.Auth.JWT.Issuer)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)

	require.True(t, cfg.Features.Notifications.Enabled)
	require.Equal(t, 30*time.Second, cfg.Features.Notifications.PollInterval)
	require.Equal(t, 7*24*time.Hour, cfg.Features.Notifications.ReadRetention)

	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, "/metrics", cfg.Metrics.Endpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 9090
  log_level: debug
  log_format: console
database:
  driver: postgres
  postgres:
    host: db.example.com
    port: 5433
    database: cartly
    username: shop
    password: secret
auth:
  jwt:
    secret: test-secret
    access_token_ttl: 2h
features:
  notifications:
    enabled: false
    poll_interval: 10s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "console", cfg.Server.LogFormat)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, "test-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 2*time.Hour, cfg.Auth.JWT.TTL)
	require.False(t, cfg.Features.Notifications.Enabled)
	require.Equal(t, 10*time.Second, cfg.Features.Notifications.PollInterval)
}
