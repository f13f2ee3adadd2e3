package adapter

import (
	"context"
	"math"

	"github.com/guregu/null/v6"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/lineitem"
	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/types"
)

func statementFor(st *interfaces.Statements, s types.Statement) interfaces.Statement {
	switch s {
	case types.StatementIncome:
		return st.Income
	case types.StatementBalance:
		return st.Balance
	case types.StatementCashflow:
		return st.Cashflow
	}
	return interfaces.Statement{}
}

// FetchLineItems resolves each requested name against the most recent column
// of its statement. Unknown names and missing or NaN values are skipped.
func (a *Adapter) FetchLineItems(ctx context.Context, ticker string, names []string, endDate, period string, limit int) types.Result[types.LineItem] {
	if _, err := parseDate(endDate); err != nil {
		return types.Failed[types.LineItem](err)
	}
	period, err := types.ParsePeriod(period)
	if err != nil {
		return types.Failed[types.LineItem](err)
	}

	st, err := a.vendor.FetchStatements(ctx, ticker)
	if err != nil {
		return vendorFailure[types.LineItem]("statements", err)
	}
	if st == nil || (st.Income.Empty() && st.Balance.Empty() && st.Cashflow.Empty()) {
		return types.Empty[types.LineItem]("no financial statements")
	}

	n := a.limit(limit)
	items := make([]types.LineItem, 0, len(names))
	for _, name := range names {
		if len(items) >= n {
			break
		}

		kind, ok := lineitem.Parse(name)
		if !ok {
			logger.Debug(ctx, "Skipping unknown line item", "ticker", ticker, "name", name)
			continue
		}

		col, ok := statementFor(st, kind.Statement()).Latest()
		if !ok {
			continue
		}
		v, ok := col.Values[kind.VendorField()]
		if !ok || math.IsNaN(v) {
			continue
		}

		reported := endDate
		if !col.EndDate.IsZero() {
			reported = col.EndDate.Format(types.DateFormat)
		}

		items = append(items, types.LineItem{
			Ticker:       ticker,
			ReportPeriod: reported,
			Period:       period,
			Currency:     currencyUSD,
			Values:       map[string]null.Float{kind.Name(): null.FloatFrom(v)},
		})
	}

	if len(items) == 0 {
		return types.Empty[types.LineItem]("no requested line items found")
	}
	return types.Ok(items)
}

func (a *Adapter) SearchLineItems(ctx context.Context, ticker string, lineItems []string, endDate, period string, limit int) ([]types.LineItem, error) {
	return resolve(ctx, a.policy, OpLineItems, ticker,
		a.FetchLineItems(ctx, ticker, lineItems, endDate, period, limit))
}
