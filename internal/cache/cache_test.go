package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-data-adapter/internal/store"
	"market-data-adapter/internal/types"
)

var samplePrices = []types.PricePoint{
	{Open: 187.15, Close: 185.64, High: 188.44, Low: 183.89, Volume: 82488700, Time: "2024-01-02"},
	{Open: 184.22, Close: 184.25, High: 185.88, Low: 183.43, Volume: 58414500, Time: "2024-01-03"},
}

var sampleMetrics = []types.MetricsSnapshot{{
	Ticker:               "AAPL",
	ReportPeriod:         "2024-01-05",
	Period:               "ttm",
	Currency:             "USD",
	MarketCap:            null.FloatFrom(2.9e12),
	PriceToEarningsRatio: null.FloatFrom(29.5),
}}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type testBackend struct {
	cache *Cache
	clock *clock
}

// backends returns each locally runnable backend with a controllable clock.
func backends(t *testing.T, ttl time.Duration) map[string]testBackend {
	t.Helper()
	start := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	mem := newMemoryStore()
	memClock := &clock{t: start}
	mem.now = memClock.now

	fileCache, err := NewFile(t.TempDir(), ttl)
	require.NoError(t, err)
	fileClock := &clock{t: start}
	fileCache.kv.(*fileStore).now = fileClock.now

	sq, err := openSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	sqClock := &clock{t: start}
	sq.now = sqClock.now

	out := map[string]testBackend{
		"memory": {newCache("memory", mem, ttl), memClock},
		"file":   {fileCache, fileClock},
		"sqlite": {newCache("sqlite", sq, ttl), sqClock},
	}
	for _, b := range out {
		c := b.cache
		t.Cleanup(func() { c.Close() })
	}
	return out
}

func TestKey(t *testing.T) {
	assert.Equal(t, "prices:AAPL", Key(KindPrices, "aapl"))
	assert.Equal(t, "financial_metrics:MSFT", Key(KindFinancialMetrics, " MSFT "))
}

func TestRoundTripAndReplace(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.cache.SetPrices(ctx, "AAPL", samplePrices))
			got, err := b.cache.GetPrices(ctx, "aapl")
			require.NoError(t, err)
			assert.Equal(t, samplePrices, got)

			// a write replaces the previous entry
			require.NoError(t, b.cache.SetPrices(ctx, "AAPL", samplePrices[:1]))
			got, err = b.cache.GetPrices(ctx, "AAPL")
			require.NoError(t, err)
			assert.Len(t, got, 1)

			require.NoError(t, b.cache.SetFinancialMetrics(ctx, "AAPL", sampleMetrics))
			metrics, err := b.cache.GetFinancialMetrics(ctx, "AAPL")
			require.NoError(t, err)
			require.Len(t, metrics, 1)
			assert.Equal(t, 29.5, metrics[0].PriceToEarningsRatio.ValueOrZero())
			assert.False(t, metrics[0].EnterpriseValue.Valid)
		})
	}
}

func TestMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t, time.Minute) {
		t.Run(name, func(t *testing.T) {
			_, err := b.cache.GetPrices(ctx, "NOPE")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.cache.SetPrices(ctx, "AAPL", samplePrices))
			require.NoError(t, b.cache.SetPrices(ctx, "MSFT", samplePrices))

			b.clock.t = b.clock.t.Add(2 * time.Minute)
			_, err = b.cache.GetPrices(ctx, "AAPL")
			assert.ErrorIs(t, err, ErrNotFound)

			n, err := b.cache.DeleteExpired(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
		})
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryStore()
	clk := &clock{t: time.Now()}
	mem.now = clk.now
	c := newCache("memory", mem, 0)

	require.NoError(t, c.SetPrices(ctx, "AAPL", samplePrices))
	clk.t = clk.t.Add(24 * 365 * time.Hour)
	_, err := c.GetPrices(ctx, "AAPL")
	require.NoError(t, err)
}

func TestFileCacheRemovesCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFile(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	n, err := c.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewFromConfig(t *testing.T) {
	cfg := store.DefaultConfig()
	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Backend())

	cfg.Cache.Backend = "sqlite"
	cfg.Cache.SQLitePath = filepath.Join(t.TempDir(), "sub", "cache.db")
	c, err = New(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "sqlite", c.Backend())

	cfg.Cache.Backend = "postgres"
	cfg.Cache.PostgresDSNEnv = "MD_TEST_UNSET_DSN"
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}
