// Package kite serves daily bars for Indian listings through Kite Connect.
package kite

import (
	"context"
	"fmt"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
)

const (
	DefaultExchange = "NSE"
	dayInterval     = "day"
)

var _ interfaces.PriceSource = (*Client)(nil)

// kiteAPI is the subset of *kiteconnect.Client used here.
type kiteAPI interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string
}

// Client fetches historical candles. Only prices are supported.
type Client struct {
	kc       kiteAPI
	exchange string
	mapper   *instrumentMapper
}

// NewClient creates a Kite client with the given credentials
func NewClient(p Params) *Client {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newWithAPI(kc, p.Exchange)
}

func newWithAPI(kc kiteAPI, exchange string) *Client {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Client{
		kc:       kc,
		exchange: exchange,
		mapper:   newInstrumentMapper(),
	}
}

// loadInstruments fills the mapper from the exchange instrument dump once.
func (c *Client) loadInstruments(ctx context.Context) error {
	if c.mapper.isLoaded() {
		return nil
	}

	instruments, err := c.kc.GetInstrumentsByExchange(c.exchange)
	if err != nil {
		return fmt.Errorf("failed to load %s instruments: %w", c.exchange, err)
	}
	for _, inst := range instruments {
		c.mapper.addMapping(inst.Tradingsymbol, inst.InstrumentToken)
	}
	c.mapper.markLoaded()

	logger.Debug(ctx, "Loaded Kite instruments", "exchange", c.exchange, "count", len(instruments))
	return nil
}

// FetchBars returns daily candles with start <= date < end.
func (c *Client) FetchBars(ctx context.Context, ticker string, start, end time.Time) ([]interfaces.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.loadInstruments(ctx); err != nil {
		return nil, err
	}

	symbol := tradingSymbol(ticker)
	token, ok := c.mapper.getToken(symbol)
	if !ok {
		return nil, fmt.Errorf("unknown %s instrument %q", c.exchange, symbol)
	}

	candles, err := c.kc.GetHistoricalData(token, dayInterval, start, end.Add(-time.Second), false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", c.mapper.getSymbol(token), err)
	}

	bars := make([]interfaces.Bar, 0, len(candles))
	for _, cd := range candles {
		d := cd.Date.Time
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		bars = append(bars, interfaces.Bar{
			Date:   day,
			Open:   cd.Open,
			High:   cd.High,
			Low:    cd.Low,
			Close:  cd.Close,
			Volume: int64(cd.Volume),
		})
	}
	return bars, nil
}
