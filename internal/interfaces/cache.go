package interfaces

import (
	"context"

	"market-data-adapter/internal/types"
)

//go:generate mockgen -destination=../cache/cachemock/mock_cache.go -package=cachemock market-data-adapter/internal/interfaces Cache

// Cache stores normalized price and metrics records keyed by ticker. Every
// write replaces the previous entry for the ticker.
type Cache interface {
	SetPrices(ctx context.Context, ticker string, prices []types.PricePoint) error
	SetFinancialMetrics(ctx context.Context, ticker string, metrics []types.MetricsSnapshot) error
	GetPrices(ctx context.Context, ticker string) ([]types.PricePoint, error)
	GetFinancialMetrics(ctx context.Context, ticker string) ([]types.MetricsSnapshot, error)
	Close() error
}

// Cleaner is implemented by caches that need expired entries purged.
type Cleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}
