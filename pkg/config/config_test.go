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

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "wallet.db", cfg.Store.Path)
	assert.Equal(t, 5*time.Second, cfg.Store.BusyTimeout)
	assert.Equal(t, 60*time.Second, cfg.Sync.MaxAge)
	assert.True(t, cfg.Sync.SingleFlight)
	assert.Equal(t, 30, cfg.Transactions.RetentionDays)
	assert.Equal(t, "127.0.0.1", cfg.Inspector.Host)
	assert.Equal(t, 8089, cfg.Inspector.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParse_OverridesKeepExplicitZeroes(t *testing.T) {
	cfg, err := Parse([]byte(`
store:
  in_memory: true
sync:
  max_age: 2m
  single_flight: false
inspector:
  enabled: false
logging:
  level: debug
  format: console
`))
	require.NoError(t, err)

	assert.True(t, cfg.Store.InMemory)
	assert.Equal(t, 2*time.Minute, cfg.Sync.MaxAge)
	assert.False(t, cfg.Sync.SingleFlight)
	assert.False(t, cfg.Inspector.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":memory:", cfg.Store.DSN())
}

func TestParse_ValidationFailure(t *testing.T) {
	_, err := Parse([]byte(`
logging:
  level: loud
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: /tmp/w.db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	dsn := cfg.Store.DSN()
	assert.True(t, strings.HasPrefix(dsn, "file:/tmp/w.db?"), dsn)
	assert.Contains(t, dsn, "busy_timeout(5000)")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LoggingConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
}
