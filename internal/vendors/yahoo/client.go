// Package yahoo talks to the Yahoo Finance JSON endpoints directly: the v8
// chart API for daily bars, quoteSummary for summary info, statements and
// ownership, and the search API for news.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"market-data-adapter/internal/api"
	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
)

const (
	DefaultBaseURL    = "https://query2.finance.yahoo.com"
	DefaultSessionURL = "https://fc.yahoo.com"
)

var _ interfaces.Vendor = (*Client)(nil)

// Config holds Yahoo client settings. Zero values fall back to defaults.
type Config struct {
	BaseURL    string
	SessionURL string
	UserAgent  string
	Timeout    time.Duration
	NewsCount  int
}

// DefaultConfig returns the production endpoints.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		SessionURL: DefaultSessionURL,
		Timeout:    30 * time.Second,
		NewsCount:  20,
	}
}

// Client implements interfaces.Vendor over HTTP.
type Client struct {
	http       *api.Client
	baseURL    string
	sessionURL string
	newsCount  int

	mu    sync.Mutex
	crumb string
}

// NewClient creates a Yahoo Finance client
func NewClient(cfg *Config) *Client {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.SessionURL == "" {
		cfg.SessionURL = def.SessionURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.NewsCount <= 0 {
		cfg.NewsCount = def.NewsCount
	}

	return &Client{
		http: api.NewClient(
			api.WithTimeout(cfg.Timeout),
			api.WithHeaders(api.YahooFinanceHeaders(cfg.UserAgent)),
			api.WithCookieJar(),
			api.WithLogging(true),
		),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		sessionURL: cfg.SessionURL,
		newsCount:  cfg.NewsCount,
	}
}

// sessionCrumb returns the cached crumb, bootstrapping the cookie session on
// first use. quoteSummary rejects requests without both.
func (c *Client) sessionCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The session host answers 404 but still sets the cookie
	if _, err := c.http.GET(ctx, c.sessionURL, nil); err != nil && !api.IsStatus(err, http.StatusNotFound) {
		logger.Debug(ctx, "Yahoo session bootstrap returned error", "error", err)
	}

	resp, err := c.http.GET(ctx, c.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return "", fmt.Errorf("failed to obtain crumb: %w", err)
	}
	crumb := strings.TrimSpace(resp.String())
	if crumb == "" {
		return "", errors.New("failed to obtain crumb: empty response")
	}

	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

// quoteSummary fetches the given modules for one ticker. An expired crumb is
// refreshed once.
func (c *Client) quoteSummary(ctx context.Context, ticker string, modules ...string) (map[string]map[string]any, error) {
	result, err := c.quoteSummaryOnce(ctx, ticker, modules)
	if err != nil && api.IsStatus(err, http.StatusUnauthorized) {
		c.resetCrumb()
		result, err = c.quoteSummaryOnce(ctx, ticker, modules)
	}
	return result, err
}

func (c *Client) quoteSummaryOnce(ctx context.Context, ticker string, modules []string) (map[string]map[string]any, error) {
	crumb, err := c.sessionCrumb(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("modules", strings.Join(modules, ","))
	q.Set("crumb", crumb)

	resp, err := c.http.GET(ctx, c.baseURL+"/v10/finance/quoteSummary/"+url.PathEscape(ticker), q)
	if err != nil {
		return nil, err
	}

	var body struct {
		QuoteSummary struct {
			Result []map[string]map[string]any `json:"result"`
			Error  *yahooError                 `json:"error"`
		} `json:"quoteSummary"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}
	if body.QuoteSummary.Error != nil {
		return nil, body.QuoteSummary.Error
	}
	if len(body.QuoteSummary.Result) == 0 {
		return map[string]map[string]any{}, nil
	}
	return body.QuoteSummary.Result[0], nil
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error %s: %s", e.Code, e.Description)
}
