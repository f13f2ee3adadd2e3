package yfinance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnjoon/go-yfinance/pkg/models"

	"market-data-adapter/internal/adapter"
	"market-data-adapter/internal/interfaces"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeTicker struct {
	bars      []models.Bar
	info      *models.Info
	income    *models.FinancialStatement
	balance   *models.FinancialStatement
	cashflow  *models.FinancialStatement
	news      []models.NewsArticle
	roster    []models.InsiderHolder
	txs       []models.InsiderTransaction
	holders   []models.Holder
	err       error
	holderErr error

	gotStart, gotEnd time.Time
	gotInterval      string
	gotFreq          []string
	gotNewsCount     int
	gotTab           models.NewsTab
	closed           bool
}

func (f *fakeTicker) HistoryRange(start, end time.Time, interval string) ([]models.Bar, error) {
	f.gotStart, f.gotEnd, f.gotInterval = start, end, interval
	return f.bars, f.err
}

func (f *fakeTicker) Info() (*models.Info, error) { return f.info, f.err }

func (f *fakeTicker) IncomeStatement(freq string) (*models.FinancialStatement, error) {
	f.gotFreq = append(f.gotFreq, freq)
	return f.income, f.err
}

func (f *fakeTicker) BalanceSheet(freq string) (*models.FinancialStatement, error) {
	f.gotFreq = append(f.gotFreq, freq)
	return f.balance, f.err
}

func (f *fakeTicker) CashFlow(freq string) (*models.FinancialStatement, error) {
	f.gotFreq = append(f.gotFreq, freq)
	return f.cashflow, f.err
}

func (f *fakeTicker) News(count int, tab models.NewsTab) ([]models.NewsArticle, error) {
	f.gotNewsCount, f.gotTab = count, tab
	return f.news, f.err
}

func (f *fakeTicker) InsiderRosterHolders() ([]models.InsiderHolder, error) {
	return f.roster, f.holderErr
}

func (f *fakeTicker) InsiderTransactions() ([]models.InsiderTransaction, error) {
	return f.txs, f.holderErr
}

func (f *fakeTicker) InstitutionalHolders() ([]models.Holder, error) {
	return f.holders, f.holderErr
}

func (f *fakeTicker) Close() { f.closed = true }

func clientFor(t *testing.T, ft *fakeTicker) *Client {
	t.Helper()
	return &Client{
		newsCount: defaultNewsCount,
		open: func(symbol string) (tickerAPI, error) {
			assert.Equal(t, "AAPL", symbol)
			return ft, nil
		},
	}
}

func TestFetchBarsRequestsExactRange(t *testing.T) {
	ft := &fakeTicker{bars: []models.Bar{
		{Date: time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), Open: 187.15, High: 188.44, Low: 183.89, Close: 185.64, Volume: 82488700},
		{Date: day(2024, 1, 3), Open: 184.22, High: 185.88, Low: 183.43, Close: 184.25, Volume: 58414500},
	}}

	bars, err := clientFor(t, ft).FetchBars(context.Background(), "AAPL", day(2024, 1, 1), day(2024, 1, 6))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), ft.gotStart)
	assert.Equal(t, day(2024, 1, 6), ft.gotEnd)
	assert.Equal(t, "1d", ft.gotInterval)
	assert.True(t, ft.closed)

	require.Len(t, bars, 2)
	assert.Equal(t, day(2024, 1, 2), bars[0].Date)
	assert.Equal(t, 187.15, bars[0].Open)
	assert.Equal(t, int64(58414500), bars[1].Volume)
}

func TestFetchBarsWrapsLibraryError(t *testing.T) {
	ft := &fakeTicker{err: errors.New("no data")}
	_, err := clientFor(t, ft).FetchBars(context.Background(), "AAPL", day(2024, 1, 1), day(2024, 1, 6))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestFetchBarsOpenError(t *testing.T) {
	c := &Client{open: func(string) (tickerAPI, error) { return nil, errors.New("bad symbol") }}
	_, err := c.FetchBars(context.Background(), "", day(2024, 1, 1), day(2024, 1, 6))
	assert.ErrorContains(t, err, "bad symbol")
}

func fullInfo() *models.Info {
	return &models.Info{
		ShortName:                "Apple Inc.",
		MarketCap:                2900000000000,
		EnterpriseValue:          2950000000000,
		TrailingPE:               29.5,
		PriceToBook:              47.1,
		PriceToSalesTrailing12Mo: 7.6,
		EnterpriseToEbitda:       22.4,
		PegRatio:                 2.1,
		GrossMargins:             0.45,
		OperatingMargins:         0.30,
		ProfitMargins:            0.25,
		ReturnOnEquity:           1.56,
		ReturnOnAssets:           0.21,
		CurrentRatio:             0.99,
		QuickRatio:               0.84,
		DebtToEquity:             199.4,
		RevenueGrowth:            0.02,
		EarningsQuarterlyGrowth:  0.13,
		PayoutRatio:              0.15,
		TrailingEps:              6.43,
		BookValue:                4.0,
	}
}

func TestFetchInfoMapsEveryMetricKey(t *testing.T) {
	info, err := clientFor(t, &fakeTicker{info: fullInfo()}).FetchInfo(context.Background(), "AAPL")
	require.NoError(t, err)

	want := map[string]float64{
		"marketCap":                    2.9e12,
		"enterpriseValue":              2.95e12,
		"trailingPE":                   29.5,
		"priceToBook":                  47.1,
		"priceToSalesTrailing12Months": 7.6,
		"enterpriseToEbitda":           22.4,
		"pegRatio":                     2.1,
		"grossMargins":                 0.45,
		"operatingMargins":             0.30,
		"profitMargins":                0.25,
		"returnOnEquity":               1.56,
		"returnOnAssets":               0.21,
		"currentRatio":                 0.99,
		"quickRatio":                   0.84,
		"debtToEquity":                 199.4,
		"revenueGrowth":                0.02,
		"earningsQuarterlyGrowth":      0.13,
		"payoutRatio":                  0.15,
		"trailingEps":                  6.43,
		"bookValue":                    4.0,
	}
	for key, v := range want {
		got, ok := info.Float(key)
		if assert.True(t, ok, key) {
			assert.Equal(t, v, got, key)
		}
	}
	name, _ := info.String("shortName")
	assert.Equal(t, "Apple Inc.", name)
}

func TestFetchInfoSkipsZeroFields(t *testing.T) {
	ft := &fakeTicker{info: &models.Info{MarketCap: 2900000000000, PegRatio: 2.1}}
	info, err := clientFor(t, ft).FetchInfo(context.Background(), "AAPL")
	require.NoError(t, err)

	_, ok := info.Float("marketCap")
	assert.True(t, ok)
	for _, key := range []string{"trailingPE", "enterpriseValue", "quickRatio", "bookValue"} {
		_, ok := info.Float(key)
		assert.False(t, ok, key)
	}
}

func TestMetricsSnapshotFullyPopulated(t *testing.T) {
	a := adapter.New(clientFor(t, &fakeTicker{info: fullInfo()}), nil)

	got, err := a.GetFinancialMetrics(context.Background(), "AAPL", "2024-01-05", "ttm", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	assert.Equal(t, 2.95e12, m.EnterpriseValue.Float64)
	assert.Equal(t, 7.6, m.PriceToSalesRatio.Float64)
	assert.Equal(t, 22.4, m.EnterpriseValueToEBITDARatio.Float64)
	assert.Equal(t, 0.45, m.GrossMargin.Float64)
	assert.Equal(t, 0.21, m.ReturnOnAssets.Float64)
	assert.Equal(t, 0.84, m.QuickRatio.Float64)
	assert.Equal(t, 0.13, m.EarningsPerShareGrowth.Float64)
	assert.Equal(t, 0.15, m.PayoutRatio.Float64)
	assert.Equal(t, 6.43, m.EarningsPerShare.Float64)
	assert.Equal(t, 4.0, m.BookValuePerShare.Float64)
	assert.True(t, m.PriceToEarningsRatio.Valid)
}

func timeseries(field string, points ...models.FinancialItem) *models.FinancialStatement {
	fs := models.NewFinancialStatement()
	fs.Data[field] = points
	return fs
}

func TestFetchStatementsPivotsByDate(t *testing.T) {
	ft := &fakeTicker{
		income: timeseries("TotalRevenue",
			models.FinancialItem{AsOfDate: day(2022, 9, 30), Value: 394328e6},
			models.FinancialItem{AsOfDate: day(2023, 9, 30), Value: 383285e6},
		),
		balance:  timeseries("TotalAssets", models.FinancialItem{AsOfDate: day(2023, 9, 30), Value: 352583e6}),
		cashflow: timeseries("NormalizedEBITDA", models.FinancialItem{AsOfDate: day(2023, 9, 30), Value: 1}),
	}

	st, err := clientFor(t, ft).FetchStatements(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []string{"annual", "annual", "annual"}, ft.gotFreq)

	latest, ok := st.Income.Latest()
	require.True(t, ok)
	assert.Equal(t, day(2023, 9, 30), latest.EndDate)
	assert.Equal(t, 383285e6, latest.Values["totalRevenue"])
	require.Len(t, st.Income.Periods, 2)

	bal, _ := st.Balance.Latest()
	assert.Equal(t, 352583e6, bal.Values["totalAssets"])
	// keys without a line-item name are dropped
	assert.True(t, st.Cashflow.Empty())
}

func TestFetchStatementsFailsOnlyWhenAllFail(t *testing.T) {
	_, err := clientFor(t, &fakeTicker{err: errors.New("timeseries down")}).FetchStatements(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "timeseries down")
}

func TestLineItemsThroughLibraryStatements(t *testing.T) {
	ft := &fakeTicker{
		income:  timeseries("TotalRevenue", models.FinancialItem{AsOfDate: day(2023, 9, 30), Value: 383285e6}),
		balance: timeseries("TotalDebt", models.FinancialItem{AsOfDate: day(2023, 9, 30), Value: math.NaN()}),
	}
	a := adapter.New(clientFor(t, ft), nil)

	items, err := a.SearchLineItems(context.Background(), "AAPL", []string{"revenue", "total_debt"}, "2024-01-05", "annual", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2023-09-30", items[0].ReportPeriod)
	assert.Equal(t, 383285e6, items[0].Values["revenue"].Float64)
}

func TestFetchNewsRequestsAtLeastCount(t *testing.T) {
	ft := &fakeTicker{news: []models.NewsArticle{
		{Title: "Apple ships", Publisher: "Reuters", Link: "https://example.com/a", PublishTime: 1704205800},
	}}
	c := clientFor(t, ft)

	articles, err := c.FetchNews(context.Background(), "AAPL", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, ft.gotNewsCount)
	assert.Equal(t, models.NewsTabNews, ft.gotTab)
	require.Len(t, articles, 1)
	assert.Equal(t, "Reuters", articles[0].Publisher)
	assert.Equal(t, int64(1704205800), articles[0].PublishTime)

	_, err = c.FetchNews(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	assert.Equal(t, defaultNewsCount, ft.gotNewsCount)
}

func TestFetchHoldersBuildsSections(t *testing.T) {
	latest := day(2023, 11, 16)
	ft := &fakeTicker{
		roster:  []models.InsiderHolder{{Name: "COOK TIMOTHY D", Position: "Chief Executive Officer", SharesOwnedDirectly: 3280180, LatestTransDate: &latest}},
		holders: []models.Holder{{Holder: "Vanguard Group Inc", Shares: 1300000000, DateReported: day(2023, 9, 30)}},
	}

	h, err := clientFor(t, ft).FetchHolders(context.Background(), "AAPL")
	require.NoError(t, err)

	roster := h.Sections[interfaces.SectionInsiderHolders]
	require.Len(t, roster, 1)
	assert.Equal(t, "COOK TIMOTHY D", roster[0]["name"])
	assert.Equal(t, 3280180.0, roster[0]["positionDirect"])
	assert.Equal(t, float64(latest.Unix()), roster[0]["latestTransDate"])

	inst := h.Sections[interfaces.SectionInstitutionOwnership]
	require.Len(t, inst, 1)
	assert.Equal(t, 1.3e9, inst[0]["position"])

	_, present := h.Sections[interfaces.SectionInsiderTransactions]
	assert.False(t, present)
}

func TestFetchHoldersAllSectionsFail(t *testing.T) {
	_, err := clientFor(t, &fakeTicker{holderErr: errors.New("quoteSummary 404")}).FetchHolders(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "quoteSummary 404")
}

func TestInsiderTradesThroughLibraryHolders(t *testing.T) {
	latest := day(2024, 1, 3)
	ft := &fakeTicker{roster: []models.InsiderHolder{{Name: "COOK TIMOTHY D", SharesOwnedDirectly: 3280180, LatestTransDate: &latest}}}
	a := adapter.New(clientFor(t, ft), nil)

	trades, err := a.GetInsiderTrades(context.Background(), "AAPL", "2024-01-05", "", 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "2024-01-03", trades[0].FilingDate)
	assert.Equal(t, 3280180.0, trades[0].TransactionShares.Float64)
}
