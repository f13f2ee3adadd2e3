// Package vendor composes the data sources selected by config into a single
// interfaces.Vendor.
package vendor

import (
	"context"
	"fmt"
	"os"
	"time"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/store"
	"market-data-adapter/internal/vendors/kite"
	"market-data-adapter/internal/vendors/scrape"
	"market-data-adapter/internal/vendors/yahoo"
	"market-data-adapter/internal/vendors/yfinance"
)

var _ interfaces.Vendor = (*Composite)(nil)

// Composite routes each data kind to its own source.
type Composite struct {
	Prices     interfaces.PriceSource
	Info       interfaces.InfoSource
	Statements interfaces.StatementSource
	News       interfaces.NewsSource
	Holders    interfaces.HolderSource
}

func (c *Composite) FetchBars(ctx context.Context, ticker string, start, end time.Time) ([]interfaces.Bar, error) {
	if c.Prices == nil {
		return nil, interfaces.ErrUnsupported
	}
	return c.Prices.FetchBars(ctx, ticker, start, end)
}

func (c *Composite) FetchInfo(ctx context.Context, ticker string) (interfaces.Info, error) {
	if c.Info == nil {
		return nil, interfaces.ErrUnsupported
	}
	return c.Info.FetchInfo(ctx, ticker)
}

func (c *Composite) FetchStatements(ctx context.Context, ticker string) (*interfaces.Statements, error) {
	if c.Statements == nil {
		return nil, interfaces.ErrUnsupported
	}
	return c.Statements.FetchStatements(ctx, ticker)
}

func (c *Composite) FetchNews(ctx context.Context, ticker string, count int) ([]interfaces.Article, error) {
	if c.News == nil {
		return nil, interfaces.ErrUnsupported
	}
	return c.News.FetchNews(ctx, ticker, count)
}

func (c *Composite) FetchHolders(ctx context.Context, ticker string) (*interfaces.Holders, error) {
	if c.Holders == nil {
		return nil, interfaces.ErrUnsupported
	}
	return c.Holders.FetchHolders(ctx, ticker)
}

// New builds the vendor described by cfg. The Yahoo HTTP client backs the
// kinds the selected provider cannot serve, which for kite is everything but
// prices.
func New(cfg *store.Config) (*Composite, error) {
	yc := yahoo.NewClient(&yahoo.Config{
		BaseURL:   cfg.Vendor.BaseURL,
		UserAgent: cfg.Vendor.UserAgent,
		Timeout:   cfg.Timeout(),
		NewsCount: cfg.News.MaxItems,
	})

	c := &Composite{
		Prices:     yc,
		Info:       yc,
		Statements: yc,
		News:       yc,
		Holders:    yc,
	}

	switch cfg.Vendor.Provider {
	case "yahoo":
	case "yfinance":
		yf := yfinance.NewClient(cfg.News.MaxItems)
		c.Prices = yf
		c.Info = yf
		c.Statements = yf
		c.News = yf
		c.Holders = yf
	case "kite":
		apiKey := os.Getenv(cfg.Vendor.Kite.APIKeyEnv)
		accessToken := os.Getenv(cfg.Vendor.Kite.AccessTokenEnv)
		if apiKey == "" || accessToken == "" {
			return nil, fmt.Errorf("vendor.provider 'kite' requires %s and %s", cfg.Vendor.Kite.APIKeyEnv, cfg.Vendor.Kite.AccessTokenEnv)
		}
		c.Prices = kite.NewClient(kite.Params{
			APIKey:      apiKey,
			AccessToken: accessToken,
			Exchange:    cfg.Vendor.Kite.Exchange,
		})
	default:
		return nil, fmt.Errorf("unknown vendor provider: %s", cfg.Vendor.Provider)
	}

	if cfg.News.Source == "scrape" {
		c.News = scrape.NewScraper(scrape.Params{
			UserAgent: cfg.Vendor.UserAgent,
			Timeout:   cfg.Timeout(),
			MaxItems:  cfg.News.MaxItems,
		})
	}

	return c, nil
}
