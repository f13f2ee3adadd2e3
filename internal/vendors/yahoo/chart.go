package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"market-data-adapter/internal/interfaces"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		Currency             string `json:"currency"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		GMTOffset            int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchBars returns daily bars in [start, end). Rows with any null field are
// dropped; Yahoo emits them for halted sessions.
func (c *Client) FetchBars(ctx context.Context, ticker string, start, end time.Time) ([]interfaces.Bar, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("includePrePost", "false")
	q.Set("events", "div,split")

	resp, err := c.http.GET(ctx, c.baseURL+"/v8/finance/chart/"+url.PathEscape(ticker), q)
	if err != nil {
		return nil, err
	}

	var body chartResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}
	if body.Chart.Error != nil {
		return nil, body.Chart.Error
	}
	if len(body.Chart.Result) == 0 {
		return nil, nil
	}

	res := body.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := res.Indicators.Quote[0]
	loc := exchangeLocation(res.Meta.ExchangeTimezoneName, res.Meta.GMTOffset)

	bars := make([]interfaces.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		open, ok1 := at(quote.Open, i)
		high, ok2 := at(quote.High, i)
		low, ok3 := at(quote.Low, i)
		closePrice, ok4 := at(quote.Close, i)
		vol, ok5 := at(quote.Volume, i)
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			continue
		}
		t := time.Unix(ts, 0).In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		bars = append(bars, interfaces.Bar{
			Date:   day,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(vol),
		})
	}
	return bars, nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

// exchangeLocation resolves the exchange's zone so daily timestamps map to
// the trading date rather than the UTC date.
func exchangeLocation(name string, offset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if offset != 0 {
		return time.FixedZone(fmt.Sprintf("GMT%+d", offset/3600), offset)
	}
	return time.UTC
}
