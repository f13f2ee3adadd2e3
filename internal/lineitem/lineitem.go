// Package lineitem enumerates the financial statement line items the adapter
// can resolve, each bound to the statement that holds it and the vendor field
// name inside that statement.
package lineitem

import (
	"fmt"
	"strings"

	"market-data-adapter/internal/types"
)

// Kind identifies one normalized line item.
type Kind int

const (
	Revenue Kind = iota + 1
	RevenueUSD
	CostOfRevenue
	GrossProfit
	OperatingExpense
	OperatingIncome
	InterestExpense
	EBIT
	EBITDA
	IncomeTaxExpense
	NetIncome
	NetIncomeCommonStock
	EarningsPerShare
	EarningsPerShareDiluted
	ConsolidatedIncome
	ResearchAndDevelopment
	SellingGeneralAndAdministrative

	Cash
	TotalAssets
	TotalLiabilities
	TotalEquity
	TotalDebt
	AccountsPayable
	AccountsReceivable
	Inventory
	CurrentAssets
	CurrentLiabilities
	LongTermDebt

	FreeCashFlow
	OperatingCashFlow
	CapitalExpenditure
	CashDividendsPaid
	IssuanceOfStock
	RepurchaseOfStock

	numKinds
)

type kindInfo struct {
	name      string
	statement types.Statement
	field     string
}

var table = map[Kind]kindInfo{
	Revenue:                         {"revenue", types.StatementIncome, "totalRevenue"},
	RevenueUSD:                      {"revenue_usd", types.StatementIncome, "totalRevenue"},
	CostOfRevenue:                   {"cost_of_revenue", types.StatementIncome, "costOfRevenue"},
	GrossProfit:                     {"gross_profit", types.StatementIncome, "grossProfit"},
	OperatingExpense:                {"operating_expense", types.StatementIncome, "totalOperatingExpenses"},
	OperatingIncome:                 {"operating_income", types.StatementIncome, "operatingIncome"},
	InterestExpense:                 {"interest_expense", types.StatementIncome, "interestExpense"},
	EBIT:                            {"ebit", types.StatementIncome, "ebit"},
	EBITDA:                          {"ebitda", types.StatementIncome, "ebitda"},
	IncomeTaxExpense:                {"income_tax_expense", types.StatementIncome, "incomeTaxExpense"},
	NetIncome:                       {"net_income", types.StatementIncome, "netIncome"},
	NetIncomeCommonStock:            {"net_income_common_stock", types.StatementIncome, "netIncomeApplicableToCommonShares"},
	EarningsPerShare:                {"earnings_per_share", types.StatementIncome, "basicEPS"},
	EarningsPerShareDiluted:         {"earnings_per_share_diluted", types.StatementIncome, "dilutedEPS"},
	ConsolidatedIncome:              {"consolidated_income", types.StatementIncome, "totalRevenue"},
	ResearchAndDevelopment:          {"research_and_development", types.StatementIncome, "researchDevelopment"},
	SellingGeneralAndAdministrative: {"selling_general_and_administrative_expenses", types.StatementIncome, "sellingGeneralAdministrative"},

	Cash:               {"cash", types.StatementBalance, "cash"},
	TotalAssets:        {"total_assets", types.StatementBalance, "totalAssets"},
	TotalLiabilities:   {"total_liabilities", types.StatementBalance, "totalLiab"},
	TotalEquity:        {"total_equity", types.StatementBalance, "totalStockholderEquity"},
	TotalDebt:          {"total_debt", types.StatementBalance, "totalDebt"},
	AccountsPayable:    {"accounts_payable", types.StatementBalance, "accountsPayable"},
	AccountsReceivable: {"accounts_receivable", types.StatementBalance, "netReceivables"},
	Inventory:          {"inventory", types.StatementBalance, "inventory"},
	CurrentAssets:      {"current_assets", types.StatementBalance, "totalCurrentAssets"},
	CurrentLiabilities: {"current_liabilities", types.StatementBalance, "totalCurrentLiabilities"},
	LongTermDebt:       {"long_term_debt", types.StatementBalance, "longTermDebt"},

	FreeCashFlow:       {"free_cash_flow", types.StatementCashflow, "freeCashFlow"},
	OperatingCashFlow:  {"operating_cash_flow", types.StatementCashflow, "totalCashFromOperatingActivities"},
	CapitalExpenditure: {"capital_expenditure", types.StatementCashflow, "capitalExpenditures"},
	CashDividendsPaid:  {"cash_dividends_paid", types.StatementCashflow, "dividendsPaid"},
	IssuanceOfStock:    {"issuance_of_stock", types.StatementCashflow, "issuanceOfStock"},
	RepurchaseOfStock:  {"repurchase_of_stock", types.StatementCashflow, "repurchaseOfStock"},
}

var byName map[string]Kind

func init() {
	if err := validate(); err != nil {
		panic(err)
	}
	byName = make(map[string]Kind, len(table))
	for k, s := range table {
		byName[s.name] = k
	}
}

// validate checks that every declared kind has a complete table entry.
func validate() error {
	names := make(map[string]bool, len(table))
	for k := Kind(1); k < numKinds; k++ {
		s, ok := table[k]
		if !ok {
			return fmt.Errorf("lineitem: kind %d has no table entry", int(k))
		}
		if s.name == "" || s.field == "" {
			return fmt.Errorf("lineitem: kind %d has an empty name or vendor field", int(k))
		}
		if s.statement < types.StatementIncome || s.statement > types.StatementCashflow {
			return fmt.Errorf("lineitem: %s has no statement", s.name)
		}
		if names[s.name] {
			return fmt.Errorf("lineitem: duplicate name %s", s.name)
		}
		names[s.name] = true
	}
	if len(table) != int(numKinds)-1 {
		return fmt.Errorf("lineitem: table has %d entries, want %d", len(table), int(numKinds)-1)
	}
	return nil
}

// Parse resolves a normalized line-item name.
func Parse(name string) (Kind, bool) {
	k, ok := byName[strings.TrimSpace(name)]
	return k, ok
}

// All returns every kind in declaration order.
func All() []Kind {
	out := make([]Kind, 0, numKinds-1)
	for k := Kind(1); k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) Name() string               { return table[k].name }
func (k Kind) Statement() types.Statement { return table[k].statement }
func (k Kind) VendorField() string        { return table[k].field }
func (k Kind) String() string             { return k.Name() }
func (k Kind) Valid() bool {
	_, ok := table[k]
	return ok
}
