// Package cache provides the interfaces.Cache backends. Every backend stores
// JSON arrays under "prices:{TICKER}" and "financial_metrics:{TICKER}" and
// replaces the whole entry on write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/types"
)

// ErrNotFound is returned for a missing or expired entry.
var ErrNotFound = errors.New("cache entry not found")

const (
	KindPrices           = "prices"
	KindFinancialMetrics = "financial_metrics"
)

var (
	_ interfaces.Cache   = (*Cache)(nil)
	_ interfaces.Cleaner = (*Cache)(nil)
)

// kvStore is the byte-level layer a backend implements.
type kvStore interface {
	put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	get(ctx context.Context, key string) ([]byte, error)
	close() error
}

// expirer is implemented by stores that do not expire entries themselves.
type expirer interface {
	deleteExpired(ctx context.Context) (int64, error)
}

// Cache encodes records and delegates storage to a backend.
type Cache struct {
	kv      kvStore
	ttl     time.Duration
	backend string
}

func newCache(backend string, kv kvStore, ttl time.Duration) *Cache {
	return &Cache{kv: kv, ttl: ttl, backend: backend}
}

// Key builds the storage key for a record kind and ticker.
func Key(kind, ticker string) string {
	return kind + ":" + strings.ToUpper(strings.TrimSpace(ticker))
}

// Backend names the storage backend.
func (c *Cache) Backend() string {
	return c.backend
}

func (c *Cache) SetPrices(ctx context.Context, ticker string, prices []types.PricePoint) error {
	return c.set(ctx, KindPrices, ticker, prices, len(prices))
}

func (c *Cache) SetFinancialMetrics(ctx context.Context, ticker string, metrics []types.MetricsSnapshot) error {
	return c.set(ctx, KindFinancialMetrics, ticker, metrics, len(metrics))
}

func (c *Cache) GetPrices(ctx context.Context, ticker string) ([]types.PricePoint, error) {
	var prices []types.PricePoint
	if err := c.load(ctx, KindPrices, ticker, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

func (c *Cache) GetFinancialMetrics(ctx context.Context, ticker string) ([]types.MetricsSnapshot, error) {
	var metrics []types.MetricsSnapshot
	if err := c.load(ctx, KindFinancialMetrics, ticker, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// DeleteExpired purges expired entries. Backends with native expiry report 0.
func (c *Cache) DeleteExpired(ctx context.Context) (int64, error) {
	e, ok := c.kv.(expirer)
	if !ok {
		return 0, nil
	}
	n, err := e.deleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired %s entries: %w", c.backend, err)
	}
	return n, nil
}

func (c *Cache) Close() error {
	return c.kv.close()
}

func (c *Cache) set(ctx context.Context, kind, ticker string, v any, count int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if err := c.kv.put(ctx, Key(kind, ticker), data, c.ttl); err != nil {
		return fmt.Errorf("failed to write %s to %s cache: %w", kind, c.backend, err)
	}
	logger.CacheWrite(ctx, c.backend, kind, ticker, count)
	return nil
}

func (c *Cache) load(ctx context.Context, kind, ticker string, v any) error {
	data, err := c.kv.get(ctx, Key(kind, ticker))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to read %s from %s cache: %w", kind, c.backend, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", kind, err)
	}
	return nil
}

// expiry returns the expiry instant for an entry written at now. A
// non-positive ttl never expires and yields the zero time.
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func isExpired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && now.After(expiresAt)
}
