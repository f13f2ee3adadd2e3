package adapter

import (
	"context"
	"fmt"
	"time"

	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/types"
)

const (
	unknownAuthor = "Unknown"
	defaultSource = "Yahoo Finance"
)

// FetchCompanyNews returns up to limit items from the vendor listing. The
// listing is not filtered by date; startDate and endDate are validated only.
func (a *Adapter) FetchCompanyNews(ctx context.Context, ticker, endDate, startDate string, limit int) types.Result[types.NewsItem] {
	if _, err := parseDate(endDate); err != nil {
		return types.Failed[types.NewsItem](err)
	}
	if _, _, err := parseOptionalDate(startDate); err != nil {
		return types.Failed[types.NewsItem](err)
	}

	n := a.limit(limit)
	articles, err := a.vendor.FetchNews(ctx, ticker, n)
	if err != nil {
		return vendorFailure[types.NewsItem]("news", err)
	}
	if len(articles) == 0 {
		return types.Empty[types.NewsItem]("no news")
	}
	logger.Debug(ctx, "News listing is not date filtered",
		"ticker", ticker, "start_date", startDate, "end_date", endDate)

	if len(articles) > n {
		articles = articles[:n]
	}

	items := make([]types.NewsItem, 0, len(articles))
	for _, art := range articles {
		published := a.now()
		if art.PublishTime != 0 {
			published = time.Unix(art.PublishTime, 0)
		}
		date := published.In(a.loc).Format(types.DateTimeFormat)

		title := art.Title
		if title == "" {
			title = fmt.Sprintf("News for %s on %s", ticker, date)
		}
		author, source := art.Publisher, art.Publisher
		if art.Publisher == "" {
			author, source = unknownAuthor, defaultSource
		}

		items = append(items, types.NewsItem{
			Ticker: ticker,
			Title:  title,
			Author: author,
			Source: source,
			Date:   date,
			URL:    art.Link,
		})
	}

	return types.Ok(items)
}

func (a *Adapter) GetCompanyNews(ctx context.Context, ticker, endDate, startDate string, limit int) ([]types.NewsItem, error) {
	return resolve(ctx, a.policy, OpCompanyNews, ticker,
		a.FetchCompanyNews(ctx, ticker, endDate, startDate, limit))
}
