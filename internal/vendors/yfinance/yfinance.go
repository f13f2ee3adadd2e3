// Package yfinance serves every vendor capability through the go-yfinance
// library. Library shapes are translated into the same raw vocabulary the
// Yahoo HTTP client produces, so the adapter cannot tell the two apart.
package yfinance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
)

var _ interfaces.Vendor = (*Client)(nil)

const (
	defaultNewsCount = 20
	// Statements are read at annual frequency, matching the quoteSummary
	// statement histories.
	statementFrequency = "annual"
)

// tickerAPI is the subset of *ticker.Ticker the client uses.
type tickerAPI interface {
	HistoryRange(start, end time.Time, interval string) ([]models.Bar, error)
	Info() (*models.Info, error)
	IncomeStatement(freq string) (*models.FinancialStatement, error)
	BalanceSheet(freq string) (*models.FinancialStatement, error)
	CashFlow(freq string) (*models.FinancialStatement, error)
	News(count int, tab models.NewsTab) ([]models.NewsArticle, error)
	InsiderRosterHolders() ([]models.InsiderHolder, error)
	InsiderTransactions() ([]models.InsiderTransaction, error)
	InstitutionalHolders() ([]models.Holder, error)
	Close()
}

// Client wraps go-yfinance tickers.
type Client struct {
	open      func(symbol string) (tickerAPI, error)
	newsCount int
}

// NewClient creates a client backed by the library's ticker API. newsCount
// is the minimum number of articles requested per listing.
func NewClient(newsCount int) *Client {
	if newsCount <= 0 {
		newsCount = defaultNewsCount
	}
	return &Client{open: openTicker, newsCount: newsCount}
}

func openTicker(symbol string) (tickerAPI, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	return t, nil
}

func (c *Client) withTicker(ctx context.Context, symbol string, fn func(tickerAPI) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, err := c.open(symbol)
	if err != nil {
		return err
	}
	defer t.Close()
	return fn(t)
}

// FetchBars returns daily bars with start <= date < end.
func (c *Client) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]interfaces.Bar, error) {
	var bars []models.Bar
	err := c.withTicker(ctx, symbol, func(t tickerAPI) (err error) {
		bars, err = t.HistoryRange(start, end, "1d")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}

	out := make([]interfaces.Bar, 0, len(bars))
	for _, bar := range bars {
		out = append(out, interfaces.Bar{
			Date:   time.Date(bar.Date.Year(), bar.Date.Month(), bar.Date.Day(), 0, 0, 0, 0, time.UTC),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}
	return out, nil
}

// FetchInfo maps the library's typed info into vendor field names. Zero
// values are treated as missing.
func (c *Client) FetchInfo(ctx context.Context, symbol string) (interfaces.Info, error) {
	var info *models.Info
	err := c.withTicker(ctx, symbol, func(t tickerAPI) (err error) {
		info, err = t.Info()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	out := interfaces.Info{}
	if info == nil {
		return out, nil
	}
	setNonZero(out, "marketCap", float64(info.MarketCap))
	setNonZero(out, "enterpriseValue", float64(info.EnterpriseValue))
	setNonZero(out, "trailingPE", info.TrailingPE)
	setNonZero(out, "priceToBook", info.PriceToBook)
	setNonZero(out, "priceToSalesTrailing12Months", info.PriceToSalesTrailing12Mo)
	setNonZero(out, "enterpriseToEbitda", info.EnterpriseToEbitda)
	setNonZero(out, "pegRatio", info.PegRatio)
	setNonZero(out, "grossMargins", info.GrossMargins)
	setNonZero(out, "operatingMargins", info.OperatingMargins)
	setNonZero(out, "profitMargins", info.ProfitMargins)
	setNonZero(out, "returnOnEquity", info.ReturnOnEquity)
	setNonZero(out, "returnOnAssets", info.ReturnOnAssets)
	setNonZero(out, "currentRatio", info.CurrentRatio)
	setNonZero(out, "quickRatio", info.QuickRatio)
	setNonZero(out, "debtToEquity", info.DebtToEquity)
	setNonZero(out, "revenueGrowth", info.RevenueGrowth)
	setNonZero(out, "earningsQuarterlyGrowth", info.EarningsQuarterlyGrowth)
	setNonZero(out, "payoutRatio", info.PayoutRatio)
	setNonZero(out, "trailingEps", info.TrailingEps)
	setNonZero(out, "bookValue", info.BookValue)
	if info.ShortName != "" {
		out["shortName"] = info.ShortName
	}
	if info.LongName != "" {
		out["longName"] = info.LongName
	}
	return out, nil
}

func setNonZero(m interfaces.Info, key string, v float64) {
	if v != 0 {
		m[key] = v
	}
}

// FetchStatements reads the annual income statement, balance sheet and cash
// flow. A statement that fails to load is left empty; the call only fails
// when all three do.
func (c *Client) FetchStatements(ctx context.Context, symbol string) (*interfaces.Statements, error) {
	st := &interfaces.Statements{}
	err := c.withTicker(ctx, symbol, func(t tickerAPI) error {
		loads := []struct {
			name string
			get  func(string) (*models.FinancialStatement, error)
			dst  *interfaces.Statement
		}{
			{"income", t.IncomeStatement, &st.Income},
			{"balance sheet", t.BalanceSheet, &st.Balance},
			{"cash flow", t.CashFlow, &st.Cashflow},
		}

		var errs []error
		for _, l := range loads {
			fs, err := l.get(statementFrequency)
			if err != nil {
				logger.Debug(ctx, "Statement unavailable", "ticker", symbol, "statement", l.name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", l.name, err))
				continue
			}
			*l.dst = statementFrom(fs)
		}
		if len(errs) == len(loads) {
			return errors.Join(errs...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get financial statements: %w", err)
	}
	return st, nil
}

// FetchNews returns the latest news stream, at least count articles when
// the listing has them.
func (c *Client) FetchNews(ctx context.Context, symbol string, count int) ([]interfaces.Article, error) {
	var news []models.NewsArticle
	err := c.withTicker(ctx, symbol, func(t tickerAPI) (err error) {
		news, err = t.News(max(count, c.newsCount), models.NewsTabNews)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}

	out := make([]interfaces.Article, 0, len(news))
	for _, n := range news {
		out = append(out, interfaces.Article{
			Title:       n.Title,
			Publisher:   n.Publisher,
			Link:        n.Link,
			PublishTime: n.PublishTime,
		})
	}
	return out, nil
}

// FetchHolders loads the insider roster, insider transactions and
// institutional holders. Sections that fail to load or come back empty are
// omitted; the call only fails when every section errors.
func (c *Client) FetchHolders(ctx context.Context, symbol string) (*interfaces.Holders, error) {
	h := &interfaces.Holders{Sections: map[string][]interfaces.Row{}}
	err := c.withTicker(ctx, symbol, func(t tickerAPI) error {
		loads := []struct {
			section string
			rows    func() ([]interfaces.Row, error)
		}{
			{interfaces.SectionInsiderHolders, func() ([]interfaces.Row, error) {
				roster, err := t.InsiderRosterHolders()
				return rosterRows(roster), err
			}},
			{interfaces.SectionInsiderTransactions, func() ([]interfaces.Row, error) {
				txs, err := t.InsiderTransactions()
				return transactionRows(txs), err
			}},
			{interfaces.SectionInstitutionOwnership, func() ([]interfaces.Row, error) {
				holders, err := t.InstitutionalHolders()
				return institutionRows(holders), err
			}},
		}

		var errs []error
		for _, l := range loads {
			rows, err := l.rows()
			if err != nil {
				logger.Debug(ctx, "Holder section unavailable", "ticker", symbol, "section", l.section, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", l.section, err))
				continue
			}
			if len(rows) > 0 {
				h.Sections[l.section] = rows
			}
		}
		if len(errs) == len(loads) {
			return errors.Join(errs...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get holders: %w", err)
	}
	return h, nil
}
