package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg := Defaults()
	raw := `
server:
  port: 9090
database:
  driver: mysql
  url: "user:pass@tcp(localhost:3306)/sajilo"
jwt:
  access_ttl: 10m
scheduler:
  sweep_interval: 30m
`
	require.NoError(t, Decode(strings.NewReader(raw), cfg))

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 10*time.Minute, cfg.JWT.AccessTTL.Duration)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL.Duration)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.SweepInterval.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestDecodeRejectsBadDuration(t *testing.T) {
	err := Decode(strings.NewReader("session:\n  ttl: soon\n"), Defaults())
	assert.Error(t, err)
}

func TestLoadFromEnvironmentWithoutFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sajilo")
	t.Setenv("ESEWA_MERCHANT_ID", "MERCHANT")
	t.Setenv("FRONTEND_URL", "https://a.example,https://b.example")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/sajilo", cfg.Database.DSN)
	assert.Equal(t, "MERCHANT", cfg.Payment.Esewa.MerchantID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadMissingFileWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  url: postgres://db/sajilo\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/sajilo", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerMinute)
}

func TestValidateUnsupportedDriver(t *testing.T) {
	cfg := Defaults()
	cfg.Database.DSN = "x"
	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
}
