package types

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultConstructors(t *testing.T) {
	ok := Ok([]int{1, 2})
	assert.True(t, ok.IsOK())
	first, found := ok.First()
	assert.True(t, found)
	assert.Equal(t, 1, first)

	empty := Empty[int]("no rows")
	assert.True(t, empty.IsEmpty())
	assert.NoError(t, empty.Err)
	_, found = empty.First()
	assert.False(t, found)

	failed := Failed[int](io.ErrUnexpectedEOF)
	assert.True(t, failed.IsFailed())
	assert.ErrorIs(t, failed.Err, io.ErrUnexpectedEOF)
	assert.Equal(t, "failed", failed.Status.String())
}

func TestFetchErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	var err error = &FetchError{Op: "prices", Ticker: "AAPL", Err: cause}

	assert.Equal(t, "fetch prices for AAPL: connection reset", err.Error())
	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, cause))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "AAPL", fe.Ticker)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDegrade, p)

	p, err = ParsePolicy("Propagate")
	require.NoError(t, err)
	assert.Equal(t, PolicyPropagate, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]string{
		"":           PeriodTTM,
		"ttm":        PeriodTTM,
		"Annual":     PeriodAnnual,
		" quarterly": PeriodQuarterly,
	} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePeriod("weekly")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Contains(t, err.Error(), "weekly")
}

func TestLineItemJSONFlattensValues(t *testing.T) {
	li := LineItem{
		Ticker:       "AAPL",
		ReportPeriod: "2024-09-28",
		Period:       "ttm",
		Currency:     "USD",
		Values:       map[string]null.Float{"revenue": null.FloatFrom(391035000000)},
	}

	b, err := json.Marshal(li)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(b, &flat))
	assert.Equal(t, "AAPL", flat["ticker"])
	assert.Equal(t, 391035000000.0, flat["revenue"])

	var back LineItem
	require.NoError(t, json.Unmarshal(b, &back))
	v, found := back.Value("revenue")
	require.True(t, found)
	assert.Equal(t, 391035000000.0, v.ValueOrZero())
	assert.Len(t, back.Values, 1)
}
