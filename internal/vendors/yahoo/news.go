package yahoo

import (
	"context"
	"net/url"
	"strconv"

	"market-data-adapter/internal/interfaces"
)

// FetchNews returns the recent articles the search endpoint links to the
// ticker. At least count articles are requested, never fewer than the
// configured news count.
func (c *Client) FetchNews(ctx context.Context, ticker string, count int) ([]interfaces.Article, error) {
	q := url.Values{}
	q.Set("q", ticker)
	q.Set("quotesCount", "0")
	q.Set("newsCount", strconv.Itoa(max(count, c.newsCount)))

	resp, err := c.http.GET(ctx, c.baseURL+"/v1/finance/search", q)
	if err != nil {
		return nil, err
	}

	var body struct {
		News []struct {
			Title               string `json:"title"`
			Publisher           string `json:"publisher"`
			Link                string `json:"link"`
			ProviderPublishTime int64  `json:"providerPublishTime"`
		} `json:"news"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}

	articles := make([]interfaces.Article, 0, len(body.News))
	for _, n := range body.News {
		articles = append(articles, interfaces.Article{
			Title:       n.Title,
			Publisher:   n.Publisher,
			Link:        n.Link,
			PublishTime: n.ProviderPublishTime,
		})
	}
	return articles, nil
}
