package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch matches every *FetchError via errors.Is.
	ErrFetch = errors.New("fetch failed")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidPeriod is returned for report periods other than ttm, annual
	// or quarterly.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Report periods.
const (
	PeriodTTM       = "ttm"
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
)

// Status classifies the outcome of a fetch.
type Status int

const (
	// StatusOK means the vendor returned data.
	StatusOK Status = iota
	// StatusEmpty means no data exists; this is not a failure.
	StatusEmpty
	// StatusFailed means the fetch failed and Err holds the cause.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of one adapter fetch. Callers can tell "no data
// exists" (StatusEmpty) apart from "the fetch failed" (StatusFailed).
type Result[T any] struct {
	Status Status
	Items  []T
	Reason string
	Err    error
}

func Ok[T any](items []T) Result[T] {
	return Result[T]{Status: StatusOK, Items: items}
}

func Empty[T any](reason string) Result[T] {
	return Result[T]{Status: StatusEmpty, Reason: reason}
}

func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err, Reason: err.Error()}
}

func (r Result[T]) IsOK() bool     { return r.Status == StatusOK }
func (r Result[T]) IsEmpty() bool  { return r.Status == StatusEmpty }
func (r Result[T]) IsFailed() bool { return r.Status == StatusFailed }

// First returns the first item, if any.
func (r Result[T]) First() (T, bool) {
	var zero T
	if len(r.Items) == 0 {
		return zero, false
	}
	return r.Items[0], true
}

// Policy selects how a failed fetch is surfaced to the caller.
type Policy int

const (
	// PolicyDegrade logs a warning and returns an empty result.
	PolicyDegrade Policy = iota
	// PolicyPropagate returns a *FetchError wrapping the cause.
	PolicyPropagate
)

func (p Policy) String() string {
	if p == PolicyPropagate {
		return "propagate"
	}
	return "degrade"
}

// ParsePolicy accepts "degrade" or "propagate" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "degrade":
		return PolicyDegrade, nil
	case "propagate":
		return PolicyPropagate, nil
	default:
		return PolicyDegrade, fmt.Errorf("invalid policy '%s': must be 'degrade' or 'propagate'", s)
	}
}

// ParsePeriod normalizes a report period (case-insensitive). Empty means ttm.
func ParsePeriod(s string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(s)); p {
	case "":
		return PeriodTTM, nil
	case PeriodTTM, PeriodAnnual, PeriodQuarterly:
		return p, nil
	default:
		return "", fmt.Errorf("%w '%s': must be 'ttm', 'annual' or 'quarterly'", ErrInvalidPeriod, s)
	}
}

// FetchError is the generic failure surfaced under PolicyPropagate.
type FetchError struct {
	Op     string
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for %s: %v", e.Op, e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Statement selects one of the three financial statements.
type Statement int

const (
	StatementIncome Statement = iota + 1
	StatementBalance
	StatementCashflow
)

func (s Statement) String() string {
	switch s {
	case StatementIncome:
		return "income"
	case StatementBalance:
		return "balance"
	case StatementCashflow:
		return "cashflow"
	default:
		return "unknown"
	}
}
