package adapterobs

import (
	"context"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/trace"
	"market-data-adapter/internal/types"
)

// observableAdapter wraps a DataAdapter with logging and tracing
type observableAdapter struct {
	adapter interfaces.DataAdapter
}

var _ interfaces.DataAdapter = (*observableAdapter)(nil)

func Wrap(adapter interfaces.DataAdapter) interfaces.DataAdapter {
	return &observableAdapter{
		adapter: adapter,
	}
}

func (oa *observableAdapter) GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]types.PricePoint, error) {
	ctx, span := trace.StartSpan(ctx, "adapter.GetPrices")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching prices", "ticker", ticker, "start_date", startDate, "end_date", endDate)

	prices, err := oa.adapter.GetPrices(ctx, ticker, startDate, endDate)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch prices", err, "ticker", ticker)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Prices fetched", "ticker", ticker, "count", len(prices))
	return prices, nil
}

func (oa *observableAdapter) GetFinancialMetrics(ctx context.Context, ticker, endDate, period string, limit int) ([]types.MetricsSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "adapter.GetFinancialMetrics")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching financial metrics",
		"ticker", ticker, "end_date", endDate, "period", period, "limit", limit)

	metrics, err := oa.adapter.GetFinancialMetrics(ctx, ticker, endDate, period, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch financial metrics", err, "ticker", ticker)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Financial metrics fetched", "ticker", ticker, "count", len(metrics))
	return metrics, nil
}

func (oa *observableAdapter) GetCompanyNews(ctx context.Context, ticker, endDate, startDate string, limit int) ([]types.NewsItem, error) {
	ctx, span := trace.StartSpan(ctx, "adapter.GetCompanyNews")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching company news",
		"ticker", ticker, "start_date", startDate, "end_date", endDate, "limit", limit)

	news, err := oa.adapter.GetCompanyNews(ctx, ticker, endDate, startDate, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch company news", err, "ticker", ticker)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Company news fetched", "ticker", ticker, "count", len(news))
	return news, nil
}

func (oa *observableAdapter) SearchLineItems(ctx context.Context, ticker string, lineItems []string, endDate, period string, limit int) ([]types.LineItem, error) {
	ctx, span := trace.StartSpan(ctx, "adapter.SearchLineItems")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Searching line items",
		"ticker", ticker, "line_items", lineItems, "end_date", endDate, "period", period)

	items, err := oa.adapter.SearchLineItems(ctx, ticker, lineItems, endDate, period, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to search line items", err, "ticker", ticker)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Line items resolved",
		"ticker", ticker, "requested", len(lineItems), "count", len(items))
	return items, nil
}

func (oa *observableAdapter) GetInsiderTrades(ctx context.Context, ticker, endDate, startDate string, limit int) ([]types.InsiderTrade, error) {
	ctx, span := trace.StartSpan(ctx, "adapter.GetInsiderTrades")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching insider trades",
		"ticker", ticker, "start_date", startDate, "end_date", endDate, "limit", limit)

	trades, err := oa.adapter.GetInsiderTrades(ctx, ticker, endDate, startDate, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch insider trades", err, "ticker", ticker)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Insider trades fetched", "ticker", ticker, "count", len(trades))
	return trades, nil
}

func (oa *observableAdapter) GetMarketCap(ctx context.Context, ticker, endDate string) (*float64, error) {
	ctx, span := trace.StartSpan(ctx, "adapter.GetMarketCap")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching market cap", "ticker", ticker, "end_date", endDate)

	mc, err := oa.adapter.GetMarketCap(ctx, ticker, endDate)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch market cap", err, "ticker", ticker)
		return nil, err
	}

	if mc == nil {
		logger.InfoSkip(ctx, 1, "No market cap available", "ticker", ticker)
		return nil, nil
	}

	logger.InfoSkip(ctx, 1, "Market cap fetched", "ticker", ticker, "market_cap", *mc)
	return mc, nil
}
