// Package scrape reads the Yahoo Finance quote news page with a colly
// collector. It backs the news kind when the JSON search endpoint is not
// wanted.
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
)

const (
	DefaultBaseURL   = "https://finance.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var _ interfaces.NewsSource = (*Scraper)(nil)

// ArticleSelectors defines CSS selectors for extracting article data
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Publishing       string
	PublishedAt      string
}

// DefaultSelectors match the quote news stream markup.
var DefaultSelectors = ArticleSelectors{
	ArticleContainer: "li.stream-item, section[data-testid='storyitem']",
	Title:            "h3",
	URL:              "a[href]",
	Publishing:       "div.publishing, div.footer",
	PublishedAt:      "time[datetime]",
}

// Scraper handles scraping news for a ticker
type Scraper struct {
	baseURL    string
	searchPath string
	selectors  ArticleSelectors
	timeout    time.Duration
	userAgent  string
	maxItems   int
}

type Params struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	MaxItems  int
}

// NewScraper creates a scraper for the quote news page
func NewScraper(p Params) *Scraper {
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.UserAgent == "" {
		p.UserAgent = defaultUserAgent
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.MaxItems <= 0 {
		p.MaxItems = 20
	}
	return &Scraper{
		baseURL:    strings.TrimRight(p.BaseURL, "/"),
		searchPath: "/quote/{symbol}/news",
		selectors:  DefaultSelectors,
		timeout:    p.Timeout,
		userAgent:  p.UserAgent,
		maxItems:   p.MaxItems,
	}
}

// FetchNews scrapes the listing in page order, keeping up to count
// articles or the configured maximum, whichever is larger.
func (s *Scraper) FetchNews(ctx context.Context, ticker string, count int) ([]interfaces.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	articles := []interfaces.Article{}
	keep := max(count, s.maxItems)

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(s.baseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.userAgent)
	})

	c.OnHTML(s.selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= keep {
			return
		}

		title := strings.TrimSpace(e.ChildText(s.selectors.Title))
		link := e.ChildAttr(s.selectors.URL, "href")
		if title == "" || link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = s.baseURL + link
		}

		articles = append(articles, interfaces.Article{
			Title:       title,
			Publisher:   publisher(e.DOM.Find(s.selectors.Publishing).First()),
			Link:        link,
			PublishTime: publishTime(e.DOM.Find(s.selectors.PublishedAt).First()),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn(ctx, "Scraping error", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	pageURL := s.baseURL + strings.ReplaceAll(s.searchPath, "{symbol}", url.PathEscape(strings.ToUpper(ticker)))
	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	logger.Debug(ctx, "News scraping completed", "ticker", ticker, "articles", len(articles))
	return articles, nil
}

// publisher reads "Reuters • 3 hours ago" style bylines.
func publisher(sel *goquery.Selection) string {
	text := strings.TrimSpace(sel.Text())
	if i := strings.Index(text, "•"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func publishTime(sel *goquery.Selection) int64 {
	raw, ok := sel.Attr("datetime")
	if !ok {
		return 0
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return t.Unix()
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
