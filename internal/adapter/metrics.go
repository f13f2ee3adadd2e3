package adapter

import (
	"context"

	"github.com/guregu/null/v6"

	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/types"
)

// metricFields maps vendor info keys onto snapshot fields. Snapshot fields not
// listed stay null.
var metricFields = []struct {
	key   string
	field func(*types.MetricsSnapshot) *null.Float
}{
	{"marketCap", func(s *types.MetricsSnapshot) *null.Float { return &s.MarketCap }},
	{"enterpriseValue", func(s *types.MetricsSnapshot) *null.Float { return &s.EnterpriseValue }},
	{"trailingPE", func(s *types.MetricsSnapshot) *null.Float { return &s.PriceToEarningsRatio }},
	{"priceToBook", func(s *types.MetricsSnapshot) *null.Float { return &s.PriceToBookRatio }},
	{"priceToSalesTrailing12Months", func(s *types.MetricsSnapshot) *null.Float { return &s.PriceToSalesRatio }},
	{"enterpriseToEbitda", func(s *types.MetricsSnapshot) *null.Float { return &s.EnterpriseValueToEBITDARatio }},
	{"pegRatio", func(s *types.MetricsSnapshot) *null.Float { return &s.PEGRatio }},
	{"grossMargins", func(s *types.MetricsSnapshot) *null.Float { return &s.GrossMargin }},
	{"operatingMargins", func(s *types.MetricsSnapshot) *null.Float { return &s.OperatingMargin }},
	{"profitMargins", func(s *types.MetricsSnapshot) *null.Float { return &s.NetMargin }},
	{"returnOnEquity", func(s *types.MetricsSnapshot) *null.Float { return &s.ReturnOnEquity }},
	{"returnOnAssets", func(s *types.MetricsSnapshot) *null.Float { return &s.ReturnOnAssets }},
	{"currentRatio", func(s *types.MetricsSnapshot) *null.Float { return &s.CurrentRatio }},
	{"quickRatio", func(s *types.MetricsSnapshot) *null.Float { return &s.QuickRatio }},
	{"debtToEquity", func(s *types.MetricsSnapshot) *null.Float { return &s.DebtToEquity }},
	{"revenueGrowth", func(s *types.MetricsSnapshot) *null.Float { return &s.RevenueGrowth }},
	{"earningsQuarterlyGrowth", func(s *types.MetricsSnapshot) *null.Float { return &s.EarningsPerShareGrowth }},
	{"payoutRatio", func(s *types.MetricsSnapshot) *null.Float { return &s.PayoutRatio }},
	{"trailingEps", func(s *types.MetricsSnapshot) *null.Float { return &s.EarningsPerShare }},
	{"bookValue", func(s *types.MetricsSnapshot) *null.Float { return &s.BookValuePerShare }},
}

// FetchFinancialMetrics builds a single snapshot from the vendor summary info
// as of endDate and writes it to the cache.
func (a *Adapter) FetchFinancialMetrics(ctx context.Context, ticker, endDate, period string, limit int) types.Result[types.MetricsSnapshot] {
	if _, err := parseDate(endDate); err != nil {
		return types.Failed[types.MetricsSnapshot](err)
	}
	period, err := types.ParsePeriod(period)
	if err != nil {
		return types.Failed[types.MetricsSnapshot](err)
	}

	info, err := a.vendor.FetchInfo(ctx, ticker)
	if err != nil {
		return vendorFailure[types.MetricsSnapshot]("info", err)
	}
	if len(info) == 0 {
		return types.Empty[types.MetricsSnapshot]("no summary info")
	}

	snap := types.MetricsSnapshot{
		Ticker:       ticker,
		ReportPeriod: endDate,
		Period:       period,
		Currency:     currencyUSD,
	}
	for _, m := range metricFields {
		if v, ok := info.Float(m.key); ok {
			*m.field(&snap) = null.FloatFrom(v)
		}
	}

	snapshots := []types.MetricsSnapshot{snap}
	if n := a.limit(limit); len(snapshots) > n {
		snapshots = snapshots[:n]
	}

	if a.cache != nil {
		if err := a.cache.SetFinancialMetrics(ctx, ticker, snapshots); err != nil {
			logger.Warn(ctx, "Failed to cache financial metrics", "ticker", ticker, "error", err)
		}
	}

	return types.Ok(snapshots)
}

func (a *Adapter) GetFinancialMetrics(ctx context.Context, ticker, endDate, period string, limit int) ([]types.MetricsSnapshot, error) {
	return resolve(ctx, a.policy, OpFinancialMetrics, ticker,
		a.FetchFinancialMetrics(ctx, ticker, endDate, period, limit))
}
