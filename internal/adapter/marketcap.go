package adapter

import (
	"context"

	"market-data-adapter/internal/types"
)

// FetchMarketCap reads marketCap from the vendor summary info. endDate is
// validated but the vendor only reports the current figure.
func (a *Adapter) FetchMarketCap(ctx context.Context, ticker, endDate string) types.Result[float64] {
	if _, err := parseDate(endDate); err != nil {
		return types.Failed[float64](err)
	}

	info, err := a.vendor.FetchInfo(ctx, ticker)
	if err != nil {
		return vendorFailure[float64]("info", err)
	}

	mc, ok := info.Float("marketCap")
	if !ok || mc <= 0 {
		return types.Empty[float64]("no market cap")
	}
	return types.Ok([]float64{mc})
}

// GetMarketCap returns nil when no figure is available.
func (a *Adapter) GetMarketCap(ctx context.Context, ticker, endDate string) (*float64, error) {
	items, err := resolve(ctx, a.policy, OpMarketCap, ticker, a.FetchMarketCap(ctx, ticker, endDate))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	mc := items[0]
	return &mc, nil
}
