package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/google/subcommands"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/types"
)

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
)

// sampleLineItems are looked up by the line items check, one per statement.
var sampleLineItems = []string{"revenue", "net_income", "total_assets", "total_equity", "free_cash_flow", "operating_cash_flow"}

type checkResult struct {
	Name    string
	Passed  bool
	Warning string
	Detail  string
}

type checkFunc func(ctx context.Context, a interfaces.DataAdapter, ticker, start, end string) checkResult

var checks = []struct {
	key string
	fn  checkFunc
}{
	{"prices", checkPrices},
	{"metrics", checkMetrics},
	{"news", checkNews},
	{"line_items", checkLineItems},
	{"insider", checkInsider},
	{"market_cap", checkMarketCap},
}

func failed(name, format string, args ...any) checkResult {
	return checkResult{Name: name, Detail: fmt.Sprintf(format, args...)}
}

func checkPrices(ctx context.Context, a interfaces.DataAdapter, ticker, start, end string) checkResult {
	const name = "Prices"
	prices, err := a.GetPrices(ctx, ticker, start, end)
	if err != nil {
		return failed(name, "%v", err)
	}
	if len(prices) == 0 {
		return failed(name, "no price data for %s between %s and %s", ticker, start, end)
	}
	for i, p := range prices {
		if !datePattern.MatchString(p.Time) {
			return failed(name, "record %d: time %q is not YYYY-MM-DD", i, p.Time)
		}
		if p.Volume < 0 {
			return failed(name, "record %d: negative volume %d", i, p.Volume)
		}
		if i > 0 && p.Time <= prices[i-1].Time {
			return failed(name, "record %d: dates not ascending", i)
		}
	}
	return checkResult{Name: name, Passed: true, Detail: fmt.Sprintf("%d records", len(prices))}
}

func checkMetrics(ctx context.Context, a interfaces.DataAdapter, ticker, _, end string) checkResult {
	const name = "Financial Metrics"
	metrics, err := a.GetFinancialMetrics(ctx, ticker, end, "ttm", 1)
	if err != nil {
		return failed(name, "%v", err)
	}
	if len(metrics) == 0 {
		return failed(name, "no financial metrics for %s", ticker)
	}
	m := metrics[0]
	switch {
	case m.Ticker != ticker:
		return failed(name, "ticker %q, want %q", m.Ticker, ticker)
	case !datePattern.MatchString(m.ReportPeriod):
		return failed(name, "report_period %q is not YYYY-MM-DD", m.ReportPeriod)
	case m.Period == "" || m.Currency == "":
		return failed(name, "period and currency must be set")
	}
	return checkResult{Name: name, Passed: true,
		Detail: fmt.Sprintf("market_cap=%v pe=%v", m.MarketCap.ValueOrZero(), m.PriceToEarningsRatio.ValueOrZero())}
}

func checkNews(ctx context.Context, a interfaces.DataAdapter, ticker, start, end string) checkResult {
	const name = "Company News"
	news, err := a.GetCompanyNews(ctx, ticker, end, start, 10)
	if err != nil {
		return failed(name, "%v", err)
	}
	if len(news) == 0 {
		return failed(name, "no news for %s", ticker)
	}
	for i, n := range news {
		if n.Title == "" {
			return failed(name, "item %d has an empty title", i)
		}
		if !dateTimePattern.MatchString(n.Date) {
			return failed(name, "item %d: date %q is not YYYY-MM-DDThh:mm:ss", i, n.Date)
		}
	}
	return checkResult{Name: name, Passed: true, Detail: fmt.Sprintf("%d items", len(news))}
}

func checkLineItems(ctx context.Context, a interfaces.DataAdapter, ticker, _, end string) checkResult {
	const name = "Line Items"
	items, err := a.SearchLineItems(ctx, ticker, sampleLineItems, end, "ttm", len(sampleLineItems))
	if err != nil {
		return failed(name, "%v", err)
	}
	if len(items) == 0 {
		return checkResult{Name: name, Passed: true, Warning: "no line items found"}
	}
	for i, item := range items {
		if !datePattern.MatchString(item.ReportPeriod) {
			return failed(name, "item %d: report_period %q is not YYYY-MM-DD", i, item.ReportPeriod)
		}
		found := false
		for _, li := range sampleLineItems {
			if v, ok := item.Value(li); ok && v.Valid {
				found = true
				break
			}
		}
		if !found {
			return failed(name, "item %d carries none of the requested values", i)
		}
	}
	return checkResult{Name: name, Passed: true, Detail: fmt.Sprintf("%d of %d items", len(items), len(sampleLineItems))}
}

func checkInsider(ctx context.Context, a interfaces.DataAdapter, ticker, start, end string) checkResult {
	const name = "Insider Trades"
	trades, err := a.GetInsiderTrades(ctx, ticker, end, start, 5)
	if err != nil {
		return failed(name, "%v", err)
	}
	if len(trades) == 0 {
		return checkResult{Name: name, Passed: true, Warning: "no insider data"}
	}
	for i, t := range trades {
		if !datePattern.MatchString(t.FilingDate) {
			return failed(name, "record %d: filing_date %q is not YYYY-MM-DD", i, t.FilingDate)
		}
	}
	return checkResult{Name: name, Passed: true, Detail: fmt.Sprintf("%d records", len(trades))}
}

func checkMarketCap(ctx context.Context, a interfaces.DataAdapter, ticker, _, end string) checkResult {
	const name = "Market Cap"
	mc, err := a.GetMarketCap(ctx, ticker, end)
	if err != nil {
		return failed(name, "%v", err)
	}
	if mc == nil {
		return checkResult{Name: name, Passed: true, Warning: "no market cap available"}
	}
	if *mc <= 0 {
		return failed(name, "market cap %v is not positive", *mc)
	}
	return checkResult{Name: name, Passed: true, Detail: fmt.Sprintf("%.2f", *mc)}
}

// runChecks runs the named check, or all of them when only is empty.
func runChecks(ctx context.Context, a interfaces.DataAdapter, ticker, start, end, only string) ([]checkResult, error) {
	var results []checkResult
	for _, c := range checks {
		if only != "" && c.key != only {
			continue
		}
		results = append(results, c.fn(ctx, a, ticker, start, end))
	}
	if len(results) == 0 {
		keys := make([]string, 0, len(checks))
		for _, c := range checks {
			keys = append(keys, c.key)
		}
		return nil, fmt.Errorf("unknown check %q, available: %s", only, strings.Join(keys, ", "))
	}
	return results, nil
}

func printResults(w io.Writer, results []checkResult) bool {
	ok := true
	for _, r := range results {
		status := "PASSED"
		if !r.Passed {
			status = "FAILED"
			ok = false
		}
		fmt.Fprintf(w, "%-18s %s", r.Name+":", status)
		if r.Detail != "" {
			fmt.Fprintf(w, "  %s", r.Detail)
		}
		if r.Warning != "" {
			fmt.Fprintf(w, "  (warning: %s)", r.Warning)
		}
		fmt.Fprintln(w)
	}
	return ok
}

type checkCmd struct {
	ticker string
	start  string
	end    string
	only   string
}

func (*checkCmd) Name() string { return "check" }
func (*checkCmd) Synopsis() string {
	return "run every operation for a ticker and validate record formats"
}
func (*checkCmd) Usage() string {
	return `check [-ticker AAPL] [-start 2024-01-01] [-end <YYYY-MM-DD>] [-test prices]

  Runs each operation with the propagate policy and prints PASSED or FAILED per
  operation. Empty insider, line item and market cap results pass with a warning.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "AAPL", "Ticker symbol")
	f.StringVar(&c.start, "start", "2024-01-01", "Start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", today(), "End date (YYYY-MM-DD)")
	f.StringVar(&c.only, "test", "", "Run a single check: prices, metrics, news, line_items, insider, market_cap")
}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx, types.PolicyPropagate.String())
	if err != nil {
		return fail(err)
	}
	defer a.close()

	ticker := strings.ToUpper(strings.TrimSpace(c.ticker))
	results, err := runChecks(ctx, a.adapter, ticker, c.start, c.end, c.only)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	fmt.Fprintf(stdout, "Checking %s (%s vendor, %s cache)\n", ticker, a.cfg.Vendor.Provider, a.cache.Backend())
	if !printResults(stdout, results) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
