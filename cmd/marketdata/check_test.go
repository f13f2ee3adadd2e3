package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-data-adapter/internal/types"
)

type fakeAdapter struct {
	prices  []types.PricePoint
	metrics []types.MetricsSnapshot
	news    []types.NewsItem
	items   []types.LineItem
	trades  []types.InsiderTrade
	mc      *float64
	err     error
}

func (f *fakeAdapter) GetPrices(context.Context, string, string, string) ([]types.PricePoint, error) {
	return f.prices, f.err
}

func (f *fakeAdapter) GetFinancialMetrics(context.Context, string, string, string, int) ([]types.MetricsSnapshot, error) {
	return f.metrics, f.err
}

func (f *fakeAdapter) GetCompanyNews(context.Context, string, string, string, int) ([]types.NewsItem, error) {
	return f.news, f.err
}

func (f *fakeAdapter) SearchLineItems(context.Context, string, []string, string, string, int) ([]types.LineItem, error) {
	return f.items, f.err
}

func (f *fakeAdapter) GetInsiderTrades(context.Context, string, string, string, int) ([]types.InsiderTrade, error) {
	return f.trades, f.err
}

func (f *fakeAdapter) GetMarketCap(context.Context, string, string) (*float64, error) {
	return f.mc, f.err
}

func healthyAdapter() *fakeAdapter {
	mc := 2.9e12
	return &fakeAdapter{
		prices: []types.PricePoint{
			{Open: 187.15, Close: 185.64, High: 188.44, Low: 183.89, Volume: 82488700, Time: "2024-01-02"},
			{Open: 184.22, Close: 184.25, High: 185.88, Low: 183.43, Volume: 58414500, Time: "2024-01-03"},
		},
		metrics: []types.MetricsSnapshot{{Ticker: "AAPL", ReportPeriod: "2024-01-05", Period: "ttm", Currency: "USD"}},
		news:    []types.NewsItem{{Ticker: "AAPL", Title: "Apple ships", Date: "2024-01-02T14:30:00"}},
		items: []types.LineItem{{
			Ticker: "AAPL", ReportPeriod: "2023-09-30", Period: "ttm", Currency: "USD",
			Values: map[string]null.Float{"revenue": null.FloatFrom(383285e6)},
		}},
		mc: &mc,
	}
}

func resultsByName(results []checkResult) map[string]checkResult {
	out := make(map[string]checkResult, len(results))
	for _, r := range results {
		out[r.Name] = r
	}
	return out
}

func TestRunChecksAllPass(t *testing.T) {
	results, err := runChecks(context.Background(), healthyAdapter(), "AAPL", "2024-01-01", "2024-01-05", "")
	require.NoError(t, err)
	require.Len(t, results, len(checks))

	for _, r := range results {
		assert.True(t, r.Passed, "%s: %s", r.Name, r.Detail)
	}
	// no insider rows is a warning, not a failure
	assert.NotEmpty(t, resultsByName(results)["Insider Trades"].Warning)

	var buf bytes.Buffer
	assert.True(t, printResults(&buf, results))
	assert.Contains(t, buf.String(), "Prices:")
	assert.NotContains(t, buf.String(), "FAILED")
}

func TestRunChecksDetectsBadRecords(t *testing.T) {
	a := healthyAdapter()
	a.prices[1].Time = "01/03/2024"
	a.news[0].Title = ""
	a.items[0].ReportPeriod = "FY2023"

	results, err := runChecks(context.Background(), a, "AAPL", "2024-01-01", "2024-01-05", "")
	require.NoError(t, err)
	byName := resultsByName(results)

	assert.False(t, byName["Prices"].Passed)
	assert.Contains(t, byName["Prices"].Detail, "01/03/2024")
	assert.False(t, byName["Company News"].Passed)
	assert.False(t, byName["Line Items"].Passed)
	assert.True(t, byName["Market Cap"].Passed)

	var buf bytes.Buffer
	assert.False(t, printResults(&buf, results))
	assert.Contains(t, buf.String(), "FAILED")
}

func TestRunChecksEmptyRules(t *testing.T) {
	results, err := runChecks(context.Background(), &fakeAdapter{}, "AAPL", "2024-01-01", "2024-01-05", "")
	require.NoError(t, err)
	byName := resultsByName(results)

	assert.False(t, byName["Prices"].Passed)
	assert.False(t, byName["Financial Metrics"].Passed)
	assert.False(t, byName["Company News"].Passed)
	assert.True(t, byName["Line Items"].Passed)
	assert.True(t, byName["Insider Trades"].Passed)
	assert.True(t, byName["Market Cap"].Passed)
}

func TestRunChecksPropagatedError(t *testing.T) {
	a := &fakeAdapter{err: &types.FetchError{Op: "prices", Ticker: "AAPL", Err: errors.New("vendor down")}}
	results, err := runChecks(context.Background(), a, "AAPL", "2024-01-01", "2024-01-05", "market_cap")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Contains(t, results[0].Detail, "vendor down")
}

func TestRunChecksUnknownName(t *testing.T) {
	_, err := runChecks(context.Background(), &fakeAdapter{}, "AAPL", "2024-01-01", "2024-01-05", "direct_news")
	assert.ErrorContains(t, err, "unknown check")
}

func TestSplitItems(t *testing.T) {
	assert.Equal(t, []string{"revenue", "net_income"}, splitItems(" revenue, ,net_income,"))
	assert.Empty(t, splitItems(""))
}
