package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"
)

// ErrUnsupported is returned by a vendor that cannot serve a data kind.
var ErrUnsupported = errors.New("data kind not supported by vendor")

// PriceSource provides daily bars.
type PriceSource interface {
	// FetchBars returns daily bars with start <= date < end.
	FetchBars(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}

// InfoSource provides the vendor's per-ticker summary info mapping.
type InfoSource interface {
	FetchInfo(ctx context.Context, ticker string) (Info, error)
}

// StatementSource provides the income, balance sheet and cash flow statements.
type StatementSource interface {
	FetchStatements(ctx context.Context, ticker string) (*Statements, error)
}

// NewsSource provides the vendor's news listing, most recent first. count is
// the number of articles the caller wants; sources may return more.
type NewsSource interface {
	FetchNews(ctx context.Context, ticker string, count int) ([]Article, error)
}

// HolderSource provides ownership and insider sections.
type HolderSource interface {
	FetchHolders(ctx context.Context, ticker string) (*Holders, error)
}

// Vendor is the full raw data surface the adapter consumes.
type Vendor interface {
	PriceSource
	InfoSource
	StatementSource
	NewsSource
	HolderSource
}

// Bar is one raw daily price row.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Info is the vendor summary mapping keyed by vendor field name.
type Info map[string]any

// Float looks up a numeric field. Missing, non-numeric and NaN values report false.
func (i Info) Float(key string) (float64, bool) {
	v, ok := i[key]
	if !ok || v == nil {
		return 0, false
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// String looks up a string field.
func (i Info) String(key string) (string, bool) {
	s, ok := i[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// StatementPeriod is one reported column of a financial statement. Values may
// contain NaN for fields the vendor lists without a figure.
type StatementPeriod struct {
	EndDate time.Time
	Values  map[string]float64
}

// Statement holds reported periods ordered most recent first.
type Statement struct {
	Periods []StatementPeriod
}

func (s Statement) Empty() bool {
	return len(s.Periods) == 0
}

// Latest returns the most recent period.
func (s Statement) Latest() (StatementPeriod, bool) {
	if len(s.Periods) == 0 {
		return StatementPeriod{}, false
	}
	return s.Periods[0], true
}

// Statements groups the three financial statements.
type Statements struct {
	Income   Statement
	Balance  Statement
	Cashflow Statement
}

// Article is one raw news listing entry. PublishTime is epoch seconds, 0 when absent.
type Article struct {
	Title       string
	Publisher   string
	Link        string
	PublishTime int64
}

// Ownership section names, in the order insider data is looked up.
const (
	SectionInsiderHolders       = "insiderHolders"
	SectionInsiderTransactions  = "insiderTransactions"
	SectionInstitutionOwnership = "institutionOwnership"
)

// InsiderSections lists the ownership sections searched for insider data.
var InsiderSections = []string{
	SectionInsiderHolders,
	SectionInsiderTransactions,
	SectionInstitutionOwnership,
}

// Row is one entry of an ownership section.
type Row map[string]any

// Holders carries ownership sections keyed by vendor section name.
type Holders struct {
	ShortName string
	Sections  map[string][]Row
}
