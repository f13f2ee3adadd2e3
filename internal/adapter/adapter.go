// Package adapter fetches raw vendor data, normalizes it into the external
// record shapes and writes prices and metrics through to the injected cache.
//
// Every operation has a raw form (FetchX) returning a types.Result and a
// policy form (GetX) that applies the adapter's failure policy.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/types"
)

const (
	defaultLimit = 10
	currencyUSD  = "USD"
)

// Operation names used in logs and fetch errors.
const (
	OpPrices           = "prices"
	OpFinancialMetrics = "financial_metrics"
	OpCompanyNews      = "company_news"
	OpLineItems        = "line_items"
	OpInsiderTrades    = "insider_trades"
	OpMarketCap        = "market_cap"
)

var _ interfaces.DataAdapter = (*Adapter)(nil)

type Option func(*Adapter)

// WithPolicy sets how failed fetches are surfaced.
func WithPolicy(p types.Policy) Option {
	return func(a *Adapter) {
		a.policy = p
	}
}

// WithClock replaces time.Now, used for missing news timestamps and insider
// filing dates.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

// WithLocation sets the zone news timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(a *Adapter) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithDefaultLimit sets the limit applied when a caller passes limit <= 0.
func WithDefaultLimit(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.defaultLimit = n
		}
	}
}

// Adapter is the fetch-normalize-cache core.
type Adapter struct {
	vendor       interfaces.Vendor
	cache        interfaces.Cache
	policy       types.Policy
	now          func() time.Time
	loc          *time.Location
	defaultLimit int
}

// New creates an adapter over vendor. cache may be nil, in which case
// nothing is written through.
func New(vendor interfaces.Vendor, cache interfaces.Cache, opts ...Option) *Adapter {
	a := &Adapter{
		vendor:       vendor,
		cache:        cache,
		policy:       types.PolicyDegrade,
		now:          time.Now,
		loc:          time.Local,
		defaultLimit: defaultLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Policy() types.Policy {
	return a.policy
}

// resolve turns a raw result into the policy-layer return values. Empty
// results never become errors.
func resolve[T any](ctx context.Context, policy types.Policy, op, ticker string, r types.Result[T]) ([]T, error) {
	logger.Fetch(ctx, op, ticker, r.Status.String(), len(r.Items))

	switch r.Status {
	case types.StatusFailed:
		if policy == types.PolicyPropagate {
			return nil, &types.FetchError{Op: op, Ticker: ticker, Err: r.Err}
		}
		logger.Warn(ctx, "Fetch failed, returning empty result",
			"op", op, "ticker", ticker, "error", r.Err)
		return []T{}, nil
	case types.StatusEmpty:
		logger.Debug(ctx, "No data", "op", op, "ticker", ticker, "reason", r.Reason)
		return []T{}, nil
	}
	return r.Items, nil
}

// vendorFailure classifies a vendor error. A vendor that cannot serve the
// kind at all is an expected absence.
func vendorFailure[T any](kind string, err error) types.Result[T] {
	if errors.Is(err, interfaces.ErrUnsupported) {
		return types.Empty[T](kind + " not supported by vendor")
	}
	return types.Failed[T](fmt.Errorf("vendor %s: %w", kind, err))
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(types.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: must be YYYY-MM-DD", types.ErrInvalidDate, s)
	}
	return t, nil
}

// parseOptionalDate parses s, reporting false for an empty string.
func parseOptionalDate(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := parseDate(s)
	return t, err == nil, err
}

func (a *Adapter) limit(n int) int {
	if n <= 0 {
		return a.defaultLimit
	}
	return n
}

// today is the current date in the adapter's zone, as a UTC midnight.
func (a *Adapter) today() time.Time {
	n := a.now().In(a.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
