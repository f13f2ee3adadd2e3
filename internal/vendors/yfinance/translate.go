package yfinance

import (
	"sort"
	"time"

	"github.com/wnjoon/go-yfinance/pkg/models"

	"market-data-adapter/internal/interfaces"
)

// statementFields renames fundamentals-timeseries keys to the quoteSummary
// statement field names line items are looked up by.
var statementFields = map[string]string{
	// income
	"TotalRevenue":                    "totalRevenue",
	"CostOfRevenue":                   "costOfRevenue",
	"GrossProfit":                     "grossProfit",
	"OperatingExpense":                "totalOperatingExpenses",
	"OperatingIncome":                 "operatingIncome",
	"InterestExpenseNonOperating":     "interestExpense",
	"EBIT":                            "ebit",
	"EBITDA":                          "ebitda",
	"TaxProvision":                    "incomeTaxExpense",
	"NetIncome":                       "netIncome",
	"NetIncomeCommonStockholders":     "netIncomeApplicableToCommonShares",
	"BasicEPS":                        "basicEPS",
	"DilutedEPS":                      "dilutedEPS",
	"ResearchAndDevelopment":          "researchDevelopment",
	"SellingGeneralAndAdministration": "sellingGeneralAdministrative",

	// balance sheet
	"CashAndCashEquivalents":              "cash",
	"TotalAssets":                         "totalAssets",
	"TotalLiabilitiesNetMinorityInterest": "totalLiab",
	"StockholdersEquity":                  "totalStockholderEquity",
	"TotalDebt":                           "totalDebt",
	"AccountsPayable":                     "accountsPayable",
	"AccountsReceivable":                  "netReceivables",
	"Inventory":                           "inventory",
	"CurrentAssets":                       "totalCurrentAssets",
	"CurrentLiabilities":                  "totalCurrentLiabilities",
	"LongTermDebt":                        "longTermDebt",

	// cash flow
	"FreeCashFlow":             "freeCashFlow",
	"OperatingCashFlow":        "totalCashFromOperatingActivities",
	"CapitalExpenditure":       "capitalExpenditures",
	"CashDividendsPaid":        "dividendsPaid",
	"CommonStockIssuance":      "issuanceOfStock",
	"RepurchaseOfCapitalStock": "repurchaseOfStock",
}

// statementFrom pivots a date-indexed statement into one period per report
// date, most recent first. Keys without a quoteSummary name are dropped.
func statementFrom(fs *models.FinancialStatement) interfaces.Statement {
	var st interfaces.Statement
	if fs == nil {
		return st
	}

	byDate := map[time.Time]map[string]float64{}
	for key, items := range fs.Data {
		field, ok := statementFields[key]
		if !ok {
			continue
		}
		for _, item := range items {
			values := byDate[item.AsOfDate]
			if values == nil {
				values = map[string]float64{}
				byDate[item.AsOfDate] = values
			}
			values[field] = item.Value
		}
	}

	for d, values := range byDate {
		st.Periods = append(st.Periods, interfaces.StatementPeriod{EndDate: d, Values: values})
	}
	sort.Slice(st.Periods, func(i, j int) bool {
		return st.Periods[i].EndDate.After(st.Periods[j].EndDate)
	})
	return st
}

func epoch(t time.Time) float64 {
	return float64(t.Unix())
}

func rosterRows(roster []models.InsiderHolder) []interfaces.Row {
	rows := make([]interfaces.Row, 0, len(roster))
	for _, h := range roster {
		row := interfaces.Row{
			"name":     h.Name,
			"relation": h.Position,
		}
		if h.SharesOwnedDirectly > 0 {
			row["positionDirect"] = float64(h.SharesOwnedDirectly)
		}
		if h.SharesOwnedIndirectly > 0 {
			row["positionIndirect"] = float64(h.SharesOwnedIndirectly)
		}
		if h.LatestTransDate != nil {
			row["latestTransDate"] = epoch(*h.LatestTransDate)
		}
		if h.PositionDirectDate != nil {
			row["positionDirectDate"] = epoch(*h.PositionDirectDate)
		}
		rows = append(rows, row)
	}
	return rows
}

func transactionRows(txs []models.InsiderTransaction) []interfaces.Row {
	rows := make([]interfaces.Row, 0, len(txs))
	for _, tx := range txs {
		row := interfaces.Row{
			"filerName":       tx.Insider,
			"filerRelation":   tx.Position,
			"transactionText": tx.Text,
			"ownership":       tx.Ownership,
			"shares":          float64(tx.Shares),
			"value":           tx.Value,
		}
		if !tx.StartDate.IsZero() {
			row["startDate"] = epoch(tx.StartDate)
		}
		rows = append(rows, row)
	}
	return rows
}

func institutionRows(holders []models.Holder) []interfaces.Row {
	rows := make([]interfaces.Row, 0, len(holders))
	for _, h := range holders {
		row := interfaces.Row{
			"organization": h.Holder,
			"position":     float64(h.Shares),
			"value":        h.Value,
			"pctHeld":      h.PctHeld,
			"pctChange":    h.PctChange,
		}
		if !h.DateReported.IsZero() {
			row["reportDate"] = epoch(h.DateReported)
		}
		rows = append(rows, row)
	}
	return rows
}
