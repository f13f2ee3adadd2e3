package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/guregu/null/v6"

	"market-data-adapter/internal/cache"
	"market-data-adapter/internal/types"
)

var stdout io.Writer = os.Stdout

func today() string {
	return time.Now().Format(types.DateFormat)
}

func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, types.ErrInvalidDate) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// run opens the app, runs fn and closes the app.
func run(ctx context.Context, fn func(a *app) subcommands.ExitStatus) subcommands.ExitStatus {
	a, err := newApp(ctx, "")
	if err != nil {
		return fail(err)
	}
	defer a.close()
	return fn(a)
}

// tickerFlags are shared by every data command.
type tickerFlags struct {
	ticker string
	end    string
}

func (t *tickerFlags) set(f *flag.FlagSet) {
	f.StringVar(&t.ticker, "ticker", "", "Ticker symbol, e.g. AAPL")
	f.StringVar(&t.end, "end", today(), "End date (YYYY-MM-DD)")
}

func (t *tickerFlags) validate() error {
	t.ticker = strings.ToUpper(strings.TrimSpace(t.ticker))
	if t.ticker == "" {
		return errors.New("-ticker is required")
	}
	return nil
}

type pricesCmd struct {
	tickerFlags
	start string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch daily OHLCV prices" }
func (*pricesCmd) Usage() string {
	return `prices -ticker <T> -start <YYYY-MM-DD> [-end <YYYY-MM-DD>]

  Fetches daily prices for the inclusive range and writes them to the cache.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	c.tickerFlags.set(f)
	f.StringVar(&c.start, "start", "", "Start date (YYYY-MM-DD)")
}

func (c *pricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		prices, err := a.adapter.GetPrices(ctx, c.ticker, c.start, c.end)
		if err != nil {
			return fail(err)
		}
		return printJSON(types.PriceResponse{Ticker: c.ticker, Prices: prices})
	})
}

type metricsCmd struct {
	tickerFlags
	period string
	limit  int
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "fetch a financial metrics snapshot" }
func (*metricsCmd) Usage() string {
	return `metrics -ticker <T> [-end <YYYY-MM-DD>] [-period ttm] [-limit n]
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	c.tickerFlags.set(f)
	f.StringVar(&c.period, "period", "ttm", "Reporting period: ttm, annual or quarterly")
	f.IntVar(&c.limit, "limit", 10, "Maximum number of snapshots")
}

func (c *metricsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		metrics, err := a.adapter.GetFinancialMetrics(ctx, c.ticker, c.end, c.period, c.limit)
		if err != nil {
			return fail(err)
		}
		return printJSON(types.FinancialMetricsResponse{FinancialMetrics: metrics})
	})
}

type newsCmd struct {
	tickerFlags
	start string
	limit int
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "fetch recent company news" }
func (*newsCmd) Usage() string {
	return `news -ticker <T> [-end <YYYY-MM-DD>] [-start <YYYY-MM-DD>] [-limit n]

  The listing is the vendor's most recent items; dates are not used to filter.
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	c.tickerFlags.set(f)
	f.StringVar(&c.start, "start", "", "Start date (YYYY-MM-DD)")
	f.IntVar(&c.limit, "limit", 10, "Maximum number of items")
}

func (c *newsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		news, err := a.adapter.GetCompanyNews(ctx, c.ticker, c.end, c.start, c.limit)
		if err != nil {
			return fail(err)
		}
		return printJSON(types.CompanyNewsResponse{News: news})
	})
}

type lineItemsCmd struct {
	tickerFlags
	items  string
	period string
	limit  int
}

func (*lineItemsCmd) Name() string     { return "line-items" }
func (*lineItemsCmd) Synopsis() string { return "look up financial statement line items" }
func (*lineItemsCmd) Usage() string {
	return `line-items -ticker <T> -items revenue,net_income [-end <YYYY-MM-DD>] [-period ttm] [-limit n]

  Unknown item names are skipped.
`
}

func (c *lineItemsCmd) SetFlags(f *flag.FlagSet) {
	c.tickerFlags.set(f)
	f.StringVar(&c.items, "items", "", "Comma separated line item names")
	f.StringVar(&c.period, "period", "ttm", "Reporting period: ttm, annual or quarterly")
	f.IntVar(&c.limit, "limit", 10, "Maximum number of items")
}

func splitItems(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *lineItemsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	items := splitItems(c.items)
	err := c.validate()
	if err == nil && len(items) == 0 {
		err = errors.New("-items is required")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		results, err := a.adapter.SearchLineItems(ctx, c.ticker, items, c.end, c.period, c.limit)
		if err != nil {
			return fail(err)
		}
		return printJSON(types.LineItemResponse{SearchResults: results})
	})
}

type insiderCmd struct {
	tickerFlags
	start string
	limit int
}

func (*insiderCmd) Name() string     { return "insider" }
func (*insiderCmd) Synopsis() string { return "fetch insider ownership records" }
func (*insiderCmd) Usage() string {
	return `insider -ticker <T> [-end <YYYY-MM-DD>] [-start <YYYY-MM-DD>] [-limit n]
`
}

func (c *insiderCmd) SetFlags(f *flag.FlagSet) {
	c.tickerFlags.set(f)
	f.StringVar(&c.start, "start", "", "Start date (YYYY-MM-DD)")
	f.IntVar(&c.limit, "limit", 10, "Maximum number of records")
}

func (c *insiderCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		trades, err := a.adapter.GetInsiderTrades(ctx, c.ticker, c.end, c.start, c.limit)
		if err != nil {
			return fail(err)
		}
		return printJSON(types.InsiderTradeResponse{InsiderTrades: trades})
	})
}

type marketCapCmd struct {
	tickerFlags
}

func (*marketCapCmd) Name() string     { return "market-cap" }
func (*marketCapCmd) Synopsis() string { return "fetch the current market capitalization" }
func (*marketCapCmd) Usage() string {
	return `market-cap -ticker <T> [-end <YYYY-MM-DD>]
`
}

func (c *marketCapCmd) SetFlags(f *flag.FlagSet) {
	c.tickerFlags.set(f)
}

func (c *marketCapCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		mc, err := a.adapter.GetMarketCap(ctx, c.ticker, c.end)
		if err != nil {
			return fail(err)
		}
		resp := types.MarketCapResponse{Ticker: c.ticker}
		if mc != nil {
			resp.MarketCap = null.FloatFrom(*mc)
		}
		return printJSON(resp)
	})
}

type cacheCmd struct {
	ticker string
	kind   string
}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "read cached prices or metrics back" }
func (*cacheCmd) Usage() string {
	return `cache -ticker <T> [-kind prices|metrics]

  Prints what the last fetch wrote for the ticker. Exits 1 on a miss.
`
}

func (c *cacheCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "Ticker symbol")
	f.StringVar(&c.kind, "kind", "prices", "prices or metrics")
}

func (c *cacheCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.ticker = strings.ToUpper(strings.TrimSpace(c.ticker))
	if c.ticker == "" || (c.kind != "prices" && c.kind != "metrics") {
		fmt.Fprintln(os.Stderr, "Error: -ticker is required and -kind must be prices or metrics")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		var (
			out any
			err error
		)
		if c.kind == "prices" {
			var prices []types.PricePoint
			prices, err = a.cache.GetPrices(ctx, c.ticker)
			out = types.PriceResponse{Ticker: c.ticker, Prices: prices}
		} else {
			var metrics []types.MetricsSnapshot
			metrics, err = a.cache.GetFinancialMetrics(ctx, c.ticker)
			out = types.FinancialMetricsResponse{FinancialMetrics: metrics}
		}
		if errors.Is(err, cache.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "No cached %s for %s in %s cache\n", c.kind, c.ticker, a.cache.Backend())
			return subcommands.ExitFailure
		}
		if err != nil {
			return fail(err)
		}
		return printJSON(out)
	})
}
