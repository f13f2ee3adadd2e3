package yahoo

import (
	"context"

	"market-data-adapter/internal/interfaces"
)

var infoModules = []string{"price", "summaryDetail", "defaultKeyStatistics", "financialData"}

// FetchInfo returns the flattened summary fields. Earlier modules win on key
// collisions, so price.marketCap takes precedence.
func (c *Client) FetchInfo(ctx context.Context, ticker string) (interfaces.Info, error) {
	result, err := c.quoteSummary(ctx, ticker, infoModules...)
	if err != nil {
		return nil, err
	}

	info := interfaces.Info{}
	for _, name := range infoModules {
		if module, ok := result[name]; ok {
			flatten(info, module)
		}
	}
	return info, nil
}

// FetchStatements returns annual income, balance and cashflow statements.
func (c *Client) FetchStatements(ctx context.Context, ticker string) (*interfaces.Statements, error) {
	result, err := c.quoteSummary(ctx, ticker,
		"incomeStatementHistory", "balanceSheetHistory", "cashflowStatementHistory")
	if err != nil {
		return nil, err
	}

	return &interfaces.Statements{
		Income:   statementFrom(listField(result["incomeStatementHistory"], "incomeStatementHistory")),
		Balance:  statementFrom(listField(result["balanceSheetHistory"], "balanceSheetStatements")),
		Cashflow: statementFrom(listField(result["cashflowStatementHistory"], "cashflowStatements")),
	}, nil
}

// FetchHolders returns the ownership tables. Sections Yahoo omits are absent
// from the map.
func (c *Client) FetchHolders(ctx context.Context, ticker string) (*interfaces.Holders, error) {
	result, err := c.quoteSummary(ctx, ticker,
		"price",
		interfaces.SectionInsiderHolders,
		interfaces.SectionInsiderTransactions,
		interfaces.SectionInstitutionOwnership,
	)
	if err != nil {
		return nil, err
	}

	h := &interfaces.Holders{
		ShortName: getString(result["price"], "shortName"),
		Sections:  map[string][]interfaces.Row{},
	}
	sections := []struct{ module, list string }{
		{interfaces.SectionInsiderHolders, "holders"},
		{interfaces.SectionInsiderTransactions, "transactions"},
		{interfaces.SectionInstitutionOwnership, "ownershipList"},
	}
	for _, s := range sections {
		module, ok := result[s.module]
		if !ok {
			continue
		}
		h.Sections[s.module] = rowsFrom(listField(module, s.list))
	}
	return h, nil
}
