package yahoo

import (
	"math"
	"sort"
	"time"

	"market-data-adapter/internal/interfaces"
)

// unwrap turns a quoteSummary value into a plain Go value. Numbers arrive as
// {"raw": n, "fmt": "..."} and a missing figure as {}. The second result is
// false for an empty wrapper.
func unwrap(v any) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, v != nil
	}
	raw, ok := m["raw"]
	if !ok {
		return nil, false
	}
	return raw, true
}

// flatten merges a module's fields into dst without overwriting earlier keys.
func flatten(dst map[string]any, module map[string]any) {
	for k, v := range module {
		if _, exists := dst[k]; exists {
			continue
		}
		val, ok := unwrap(v)
		if !ok {
			continue
		}
		switch val.(type) {
		case map[string]any, []any:
			continue
		}
		dst[k] = val
	}
}

// getFloat64 extracts a number, handling the JSON decoder's float64 and
// integer representations.
func getFloat64(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	val, ok := unwrap(v)
	if !ok {
		return 0, false
	}
	switch n := val.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func getString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// statementFrom converts a statement history list into periods. Listed fields
// without a figure become NaN.
func statementFrom(entries []any) interfaces.Statement {
	var st interfaces.Statement
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		p := interfaces.StatementPeriod{Values: make(map[string]float64, len(m))}
		if ts, ok := getFloat64(m, "endDate"); ok {
			p.EndDate = time.Unix(int64(ts), 0).UTC()
		}
		for k, v := range m {
			if k == "endDate" || k == "maxAge" {
				continue
			}
			val, ok := unwrap(v)
			if !ok {
				p.Values[k] = math.NaN()
				continue
			}
			if f, ok := val.(float64); ok {
				p.Values[k] = f
			}
		}
		st.Periods = append(st.Periods, p)
	}
	sortPeriods(st.Periods)
	return st
}

// sortPeriods orders periods most recent first; undated periods go last.
func sortPeriods(ps []interfaces.StatementPeriod) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].EndDate.After(ps[j].EndDate)
	})
}

func rowsFrom(entries []any) []interfaces.Row {
	rows := make([]interfaces.Row, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		row := interfaces.Row{}
		flatten(row, m)
		rows = append(rows, row)
	}
	return rows
}

func listField(module map[string]any, key string) []any {
	if module == nil {
		return nil
	}
	l, _ := module[key].([]any)
	return l
}
