package types

import (
	"encoding/json"
	"fmt"

	"github.com/guregu/null/v6"
)

const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02T15:04:05"
)

// PricePoint is one daily OHLCV bar.
type PricePoint struct {
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
	Time   string  `json:"time"`
}

// MetricsSnapshot mirrors the FinancialMetrics record of the external schema.
// Every figure is nullable because the vendor may omit any of them.
type MetricsSnapshot struct {
	Ticker       string `json:"ticker"`
	ReportPeriod string `json:"report_period"`
	Period       string `json:"period"`
	Currency     string `json:"currency"`

	MarketCap                     null.Float `json:"market_cap"`
	EnterpriseValue               null.Float `json:"enterprise_value"`
	PriceToEarningsRatio          null.Float `json:"price_to_earnings_ratio"`
	PriceToBookRatio              null.Float `json:"price_to_book_ratio"`
	PriceToSalesRatio             null.Float `json:"price_to_sales_ratio"`
	EnterpriseValueToEBITDARatio  null.Float `json:"enterprise_value_to_ebitda_ratio"`
	EnterpriseValueToRevenueRatio null.Float `json:"enterprise_value_to_revenue_ratio"`
	FreeCashFlowYield             null.Float `json:"free_cash_flow_yield"`
	PEGRatio                      null.Float `json:"peg_ratio"`
	GrossMargin                   null.Float `json:"gross_margin"`
	OperatingMargin               null.Float `json:"operating_margin"`
	NetMargin                     null.Float `json:"net_margin"`
	ReturnOnEquity                null.Float `json:"return_on_equity"`
	ReturnOnAssets                null.Float `json:"return_on_assets"`
	ReturnOnInvestedCapital       null.Float `json:"return_on_invested_capital"`
	AssetTurnover                 null.Float `json:"asset_turnover"`
	InventoryTurnover             null.Float `json:"inventory_turnover"`
	ReceivablesTurnover           null.Float `json:"receivables_turnover"`
	DaysSalesOutstanding          null.Float `json:"days_sales_outstanding"`
	OperatingCycle                null.Float `json:"operating_cycle"`
	WorkingCapitalTurnover        null.Float `json:"working_capital_turnover"`
	CurrentRatio                  null.Float `json:"current_ratio"`
	QuickRatio                    null.Float `json:"quick_ratio"`
	CashRatio                     null.Float `json:"cash_ratio"`
	OperatingCashFlowRatio        null.Float `json:"operating_cash_flow_ratio"`
	DebtToEquity                  null.Float `json:"debt_to_equity"`
	DebtToAssets                  null.Float `json:"debt_to_assets"`
	InterestCoverage              null.Float `json:"interest_coverage"`
	RevenueGrowth                 null.Float `json:"revenue_growth"`
	EarningsGrowth                null.Float `json:"earnings_growth"`
	BookValueGrowth               null.Float `json:"book_value_growth"`
	EarningsPerShareGrowth        null.Float `json:"earnings_per_share_growth"`
	FreeCashFlowGrowth            null.Float `json:"free_cash_flow_growth"`
	OperatingIncomeGrowth         null.Float `json:"operating_income_growth"`
	EBITDAGrowth                  null.Float `json:"ebitda_growth"`
	PayoutRatio                   null.Float `json:"payout_ratio"`
	EarningsPerShare              null.Float `json:"earnings_per_share"`
	BookValuePerShare             null.Float `json:"book_value_per_share"`
	FreeCashFlowPerShare          null.Float `json:"free_cash_flow_per_share"`
}

// NewsItem mirrors the CompanyNews record.
type NewsItem struct {
	Ticker    string      `json:"ticker"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Source    string      `json:"source"`
	Date      string      `json:"date"`
	URL       string      `json:"url"`
	Sentiment null.String `json:"sentiment"`
}

// LineItem carries a single named statement value. Values flatten into the
// top-level JSON object next to the fixed fields.
type LineItem struct {
	Ticker       string
	ReportPeriod string
	Period       string
	Currency     string
	Values       map[string]null.Float
}

type lineItemHeader struct {
	Ticker       string `json:"ticker"`
	ReportPeriod string `json:"report_period"`
	Period       string `json:"period"`
	Currency     string `json:"currency"`
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(li.Values)+4)
	for name, v := range li.Values {
		out[name] = v
	}
	out["ticker"] = li.Ticker
	out["report_period"] = li.ReportPeriod
	out["period"] = li.Period
	out["currency"] = li.Currency
	return json.Marshal(out)
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	var hdr lineItemHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	li.Ticker = hdr.Ticker
	li.ReportPeriod = hdr.ReportPeriod
	li.Period = hdr.Period
	li.Currency = hdr.Currency
	li.Values = make(map[string]null.Float)
	for k, v := range raw {
		switch k {
		case "ticker", "report_period", "period", "currency":
			continue
		}
		var f null.Float
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("line item value %q: %w", k, err)
		}
		li.Values[k] = f
	}
	return nil
}

// Value returns the named value, if the item carries it.
func (li LineItem) Value(name string) (null.Float, bool) {
	v, ok := li.Values[name]
	return v, ok
}

// InsiderTrade mirrors the InsiderTrade record. Most transaction details are
// not exposed by the vendor and stay null.
type InsiderTrade struct {
	Ticker                       string      `json:"ticker"`
	Issuer                       null.String `json:"issuer"`
	Name                         string      `json:"name"`
	Title                        string      `json:"title"`
	IsBoardDirector              null.Bool   `json:"is_board_director"`
	TransactionDate              null.String `json:"transaction_date"`
	TransactionShares            null.Float  `json:"transaction_shares"`
	TransactionPricePerShare     null.Float  `json:"transaction_price_per_share"`
	TransactionValue             null.Float  `json:"transaction_value"`
	SharesOwnedBeforeTransaction null.Float  `json:"shares_owned_before_transaction"`
	SharesOwnedAfterTransaction  null.Float  `json:"shares_owned_after_transaction"`
	SecurityTitle                string      `json:"security_title"`
	FilingDate                   string      `json:"filing_date"`
}

type PriceResponse struct {
	Ticker string       `json:"ticker"`
	Prices []PricePoint `json:"prices"`
}

type FinancialMetricsResponse struct {
	FinancialMetrics []MetricsSnapshot `json:"financial_metrics"`
}

type CompanyNewsResponse struct {
	News []NewsItem `json:"news"`
}

type LineItemResponse struct {
	SearchResults []LineItem `json:"search_results"`
}

type InsiderTradeResponse struct {
	InsiderTrades []InsiderTrade `json:"insider_trades"`
}

type MarketCapResponse struct {
	Ticker    string     `json:"ticker"`
	MarketCap null.Float `json:"market_cap"`
}
