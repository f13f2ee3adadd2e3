package yahoo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-data-adapter/internal/interfaces"
)

const chartFixture = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","currency":"USD","exchangeTimezoneName":"America/New_York","gmtoffset":-18000},
	"timestamp":[1704205800,1704292200,1704378600,1704465000],
	"indicators":{"quote":[{
		"open":[187.15,184.22,null,181.99],
		"high":[188.44,185.88,183.09,182.76],
		"low":[183.89,183.43,180.88,180.17],
		"close":[185.64,184.25,181.91,181.18],
		"volume":[82488700,58414500,71983600,62303300]
	}]}
}],"error":null}}`

const summaryFixture = `{"quoteSummary":{"result":[{
	"price":{"shortName":"Apple Inc.","marketCap":{"raw":2900000000000,"fmt":"2.9T"}},
	"summaryDetail":{"trailingPE":{"raw":29.5,"fmt":"29.50"},"marketCap":{"raw":1,"fmt":"1"},"forwardPE":{}},
	"defaultKeyStatistics":{"pegRatio":{"raw":2.1},"bookValue":{"raw":4.79}},
	"financialData":{"currentRatio":{"raw":0.98},"financialCurrency":"USD"}
}],"error":null}}`

const statementsFixture = `{"quoteSummary":{"result":[{
	"incomeStatementHistory":{"incomeStatementHistory":[
		{"endDate":{"raw":1664496000,"fmt":"2022-09-30"},"totalRevenue":{"raw":394328000000}},
		{"endDate":{"raw":1696032000,"fmt":"2023-09-30"},"totalRevenue":{"raw":383285000000},"ebit":{}}
	]},
	"balanceSheetHistory":{"balanceSheetStatements":[]},
	"cashflowStatementHistory":{"cashflowStatements":[
		{"endDate":{"raw":1696032000},"freeCashFlow":{"raw":99584000000}}
	]}
}],"error":null}}`

const holdersFixture = `{"quoteSummary":{"result":[{
	"price":{"shortName":"Apple Inc."},
	"insiderHolders":{"holders":[
		{"name":"COOK TIMOTHY D","relation":"Chief Executive Officer","positionDirect":{"raw":3280180},"latestTransDate":{"raw":1704067200}}
	]}
}],"error":null}}`

const newsFixture = `{"news":[
	{"title":"Apple ships","publisher":"Reuters","link":"https://example.com/a","providerPublishTime":1704205800},
	{"title":"","publisher":"","link":"https://example.com/b"}
]}`

func newTestServer(t *testing.T, crumbHits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "cookie", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		if crumbHits != nil {
			atomic.AddInt32(crumbHits, 1)
		}
		w.Write([]byte("abc123"))
	})
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(chartFixture))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("crumb"))
		switch r.URL.Query().Get("modules") {
		case "price,summaryDetail,defaultKeyStatistics,financialData":
			w.Write([]byte(summaryFixture))
		case "incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory":
			w.Write([]byte(statementsFixture))
		default:
			w.Write([]byte(holdersFixture))
		}
	})
	mux.HandleFunc("/v1/finance/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("q"))
		w.Write([]byte(newsFixture))
	})
	return httptest.NewServer(mux)
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(&Config{BaseURL: srv.URL, SessionURL: srv.URL + "/session"})
}

func TestFetchBarsDropsNullRowsAndFiltersRange(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	c := newTestClient(srv)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	bars, err := c.FetchBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	// Jan 4 has a null open, Jan 5 is outside the half-open range
	require.Len(t, bars, 2)
	assert.Equal(t, "2024-01-02", bars[0].Date.Format("2006-01-02"))
	assert.Equal(t, 187.15, bars[0].Open)
	assert.Equal(t, int64(82488700), bars[0].Volume)
	assert.Equal(t, "2024-01-03", bars[1].Date.Format("2006-01-02"))
}

func TestFetchInfoFlattensModules(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	defer srv.Close()

	c := newTestClient(srv)
	info, err := c.FetchInfo(context.Background(), "AAPL")
	require.NoError(t, err)

	mc, ok := info.Float("marketCap")
	require.True(t, ok)
	assert.Equal(t, 2.9e12, mc)

	pe, ok := info.Float("trailingPE")
	require.True(t, ok)
	assert.Equal(t, 29.5, pe)

	_, ok = info.Float("forwardPE")
	assert.False(t, ok)

	name, ok := info.String("shortName")
	require.True(t, ok)
	assert.Equal(t, "Apple Inc.", name)

	// crumb is reused across calls
	_, err = c.FetchInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchStatementsOrdersMostRecentFirst(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	st, err := newTestClient(srv).FetchStatements(context.Background(), "AAPL")
	require.NoError(t, err)

	latest, ok := st.Income.Latest()
	require.True(t, ok)
	assert.Equal(t, "2023-09-30", latest.EndDate.Format("2006-01-02"))
	assert.Equal(t, 383285000000.0, latest.Values["totalRevenue"])
	assert.True(t, math.IsNaN(latest.Values["ebit"]))

	assert.True(t, st.Balance.Empty())
	assert.False(t, st.Cashflow.Empty())
}

func TestSortPeriodsPutsUndatedLast(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	ps := []interfaces.StatementPeriod{
		{Values: map[string]float64{"a": 1}},
		{EndDate: day(2021, 9, 25)},
		{EndDate: day(2023, 9, 30)},
		{Values: map[string]float64{"b": 2}},
		{EndDate: day(2022, 9, 24)},
	}
	sortPeriods(ps)

	assert.Equal(t, day(2023, 9, 30), ps[0].EndDate)
	assert.Equal(t, day(2022, 9, 24), ps[1].EndDate)
	assert.Equal(t, day(2021, 9, 25), ps[2].EndDate)
	// undated periods keep their input order
	assert.Equal(t, 1.0, ps[3].Values["a"])
	assert.Equal(t, 2.0, ps[4].Values["b"])
}

func TestFetchHolders(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	h, err := newTestClient(srv).FetchHolders(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", h.ShortName)
	rows := h.Sections[interfaces.SectionInsiderHolders]
	require.Len(t, rows, 1)
	assert.Equal(t, "COOK TIMOTHY D", rows[0]["name"])
	assert.Equal(t, 3280180.0, rows[0]["positionDirect"])
	_, present := h.Sections[interfaces.SectionInstitutionOwnership]
	assert.False(t, present)
}

func TestFetchNews(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	articles, err := newTestClient(srv).FetchNews(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Reuters", articles[0].Publisher)
	assert.Equal(t, int64(1704205800), articles[0].PublishTime)
	assert.Zero(t, articles[1].PublishTime)
}

func TestFetchNewsRequestsCallerCount(t *testing.T) {
	var counts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts = append(counts, r.URL.Query().Get("newsCount"))
		w.Write([]byte(newsFixture))
	}))
	defer srv.Close()

	c := NewClient(&Config{BaseURL: srv.URL, NewsCount: 20})
	_, err := c.FetchNews(context.Background(), "AAPL", 50)
	require.NoError(t, err)
	_, err = c.FetchNews(context.Background(), "AAPL", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"50", "20"}, counts)
}

func TestQuoteSummaryRefreshesCrumbOnUnauthorized(t *testing.T) {
	var summaryCalls, crumbCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&crumbCalls, 1)
		w.Write([]byte("fresh"))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&summaryCalls, 1) == 1 {
			http.Error(w, `{"finance":{"error":{"code":"Unauthorized"}}}`, http.StatusUnauthorized)
			return
		}
		w.Write([]byte(summaryFixture))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	info, err := newTestClient(srv).FetchInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.NotEmpty(t, info)
	assert.Equal(t, int32(2), atomic.LoadInt32(&crumbCalls))
}

func TestFetchInfoPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/test/getcrumb" {
			w.Write([]byte("c"))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchInfo(context.Background(), "AAPL")
	require.Error(t, err)
}
