package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.Vendor.Provider)
	assert.Equal(t, "degrade", cfg.Adapter.Policy)
	assert.Equal(t, 10, cfg.Adapter.DefaultLimit)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := writeConfig(t, `
vendor:
  provider: yfinance
  timeout_seconds: 5
news:
  source: scrape
adapter:
  policy: propagate
cache:
  backend: sqlite
  ttl: 2h
  sqlite_path: /tmp/md.db
server:
  addr: ":9090"
  cors_origins: ["https://example.com"]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "yfinance", cfg.Vendor.Provider)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "scrape", cfg.News.Source)
	assert.Equal(t, "propagate", cfg.Adapter.Policy)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "/tmp/md.db", cfg.Cache.SQLitePath)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cases := map[string]string{
		"vendor:\n  provider: bloomberg\n": "vendor.provider",
		"adapter:\n  policy: explode\n":    "adapter.policy",
		"cache:\n  backend: mongo\n":       "cache.backend",
		"news:\n  source: rss\n":           "news.source",
	}
	for body, field := range cases {
		_, err := LoadConfig(writeConfig(t, body))
		require.Error(t, err, body)
		assert.Contains(t, err.Error(), field)
	}
}

func TestPostgresRequiresDSN(t *testing.T) {
	t.Setenv("MD_TEST_DSN", "")
	_, err := LoadConfig(writeConfig(t, "cache:\n  backend: postgres\n  postgres_dsn_env: MD_TEST_DSN\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MD_TEST_DSN")
}

func TestUsingYahooFinanceForcesProvider(t *testing.T) {
	t.Setenv("FINANCIAL_DATASETS_API_KEY", "yahoo-finance-api")
	assert.True(t, UsingYahooFinance())

	cfg, err := LoadConfig(writeConfig(t, "vendor:\n  provider: kite\n"))
	require.NoError(t, err)
	assert.Equal(t, "yahoo", cfg.Vendor.Provider)

	t.Setenv("FINANCIAL_DATASETS_API_KEY", "real-key")
	assert.False(t, UsingYahooFinance())
}
