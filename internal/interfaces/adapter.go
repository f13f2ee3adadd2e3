package interfaces

import (
	"context"

	"market-data-adapter/internal/types"
)

// DataAdapter exposes the normalized fetch operations under a fixed failure
// policy. Dates are YYYY-MM-DD strings; an empty startDate means unbounded.
type DataAdapter interface {
	GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]types.PricePoint, error)
	GetFinancialMetrics(ctx context.Context, ticker, endDate, period string, limit int) ([]types.MetricsSnapshot, error)
	GetCompanyNews(ctx context.Context, ticker, endDate, startDate string, limit int) ([]types.NewsItem, error)
	SearchLineItems(ctx context.Context, ticker string, lineItems []string, endDate, period string, limit int) ([]types.LineItem, error)
	GetInsiderTrades(ctx context.Context, ticker, endDate, startDate string, limit int) ([]types.InsiderTrade, error)
	GetMarketCap(ctx context.Context, ticker, endDate string) (*float64, error)
}
