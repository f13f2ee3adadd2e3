package adapter

import (
	"context"
	"fmt"

	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/types"
)

// FetchPrices returns one point per trading day in [startDate, endDate] and
// writes the list to the cache. Vendor values pass through unmodified.
func (a *Adapter) FetchPrices(ctx context.Context, ticker, startDate, endDate string) types.Result[types.PricePoint] {
	start, err := parseDate(startDate)
	if err != nil {
		return types.Failed[types.PricePoint](err)
	}
	end, err := parseDate(endDate)
	if err != nil {
		return types.Failed[types.PricePoint](err)
	}
	if start.After(end) {
		return types.Failed[types.PricePoint](fmt.Errorf("%w: start %s is after end %s", types.ErrInvalidDate, startDate, endDate))
	}

	// the vendor range is end-exclusive
	bars, err := a.vendor.FetchBars(ctx, ticker, start, end.AddDate(0, 0, 1))
	if err != nil {
		return vendorFailure[types.PricePoint]("prices", err)
	}
	if len(bars) == 0 {
		return types.Empty[types.PricePoint]("no price data in range")
	}

	points := make([]types.PricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, types.PricePoint{
			Open:   b.Open,
			Close:  b.Close,
			High:   b.High,
			Low:    b.Low,
			Volume: b.Volume,
			Time:   b.Date.Format(types.DateFormat),
		})
	}

	if a.cache != nil {
		if err := a.cache.SetPrices(ctx, ticker, points); err != nil {
			logger.Warn(ctx, "Failed to cache prices", "ticker", ticker, "error", err)
		}
	}

	return types.Ok(points)
}

func (a *Adapter) GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]types.PricePoint, error) {
	return resolve(ctx, a.policy, OpPrices, ticker, a.FetchPrices(ctx, ticker, startDate, endDate))
}
