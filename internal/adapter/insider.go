package adapter

import (
	"context"
	"time"

	"github.com/guregu/null/v6"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/types"
)

const (
	notAvailable     = "Not Available"
	commonStockTitle = "Common Stock"
)

// Row keys holding a filing date, in order of preference.
var filingDateKeys = []string{"filingDate", "reportDate", "latestTransDate"}

// Row keys holding a share count, in order of preference.
var positionKeys = []string{"position", "positionDirect"}

func rowFloat(row interfaces.Row, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// filingDate reads the first usable date from the row. Epoch seconds and
// YYYY-MM-DD strings are accepted.
func filingDate(row interfaces.Row) (time.Time, bool) {
	for _, key := range filingDateKeys {
		if secs, ok := rowFloat(row, key); ok && secs > 0 {
			t := time.Unix(int64(secs), 0).UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
		if s, ok := row[key].(string); ok {
			if t, err := time.Parse(types.DateFormat, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FetchInsiderTrades maps the first non-empty ownership section into
// InsiderTrade records with filing dates in [startDate, endDate].
func (a *Adapter) FetchInsiderTrades(ctx context.Context, ticker, endDate, startDate string, limit int) types.Result[types.InsiderTrade] {
	end, err := parseDate(endDate)
	if err != nil {
		return types.Failed[types.InsiderTrade](err)
	}
	start, hasStart, err := parseOptionalDate(startDate)
	if err != nil {
		return types.Failed[types.InsiderTrade](err)
	}

	holders, err := a.vendor.FetchHolders(ctx, ticker)
	if err != nil {
		return vendorFailure[types.InsiderTrade]("holders", err)
	}

	var (
		rows    []interfaces.Row
		section string
	)
	if holders != nil {
		for _, name := range interfaces.InsiderSections {
			if r := holders.Sections[name]; len(r) > 0 {
				rows, section = r, name
				break
			}
		}
	}
	if len(rows) == 0 {
		logger.Warn(ctx, "No insider data available", "ticker", ticker)
		return types.Empty[types.InsiderTrade]("no insider section")
	}

	issuer := null.String{}
	if holders.ShortName != "" {
		issuer = null.StringFrom(holders.ShortName)
	}

	n := a.limit(limit)
	trades := make([]types.InsiderTrade, 0, len(rows))
	for _, row := range rows {
		if len(trades) >= n {
			break
		}

		filed, ok := filingDate(row)
		if !ok {
			filed = a.today()
		}
		if (hasStart && filed.Before(start)) || filed.After(end) {
			continue
		}

		var shares float64
		for _, key := range positionKeys {
			if v, ok := rowFloat(row, key); ok {
				shares = v
				break
			}
		}

		trades = append(trades, types.InsiderTrade{
			Ticker:            ticker,
			Issuer:            issuer,
			Name:              notAvailable,
			Title:             notAvailable,
			TransactionShares: null.FloatFrom(shares),
			SecurityTitle:     commonStockTitle,
			FilingDate:        filed.Format(types.DateFormat),
		})
	}

	if len(trades) == 0 {
		return types.Empty[types.InsiderTrade]("no insider rows in range")
	}
	logger.Debug(ctx, "Resolved insider section", "ticker", ticker, "section", section, "rows", len(trades))
	return types.Ok(trades)
}

func (a *Adapter) GetInsiderTrades(ctx context.Context, ticker, endDate, startDate string, limit int) ([]types.InsiderTrade, error) {
	return resolve(ctx, a.policy, OpInsiderTrades, ticker,
		a.FetchInsiderTrades(ctx, ticker, endDate, startDate, limit))
}
