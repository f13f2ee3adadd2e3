// Package api is the HTTP transport shared by the JSON vendors. It only
// issues GETs; every request runs under its own span and non-2xx answers
// come back as *StatusError.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/trace"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512

	browserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Client struct {
	hc      *http.Client
	baseURL string
	header  http.Header
	verbose bool
}

type ClientOption func(*Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.hc.Timeout = d }
}

// WithBaseURL prefixes every request path.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.header.Set(key, value) }
}

func WithHeaders(h map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range h {
			c.header.Set(k, v)
		}
	}
}

// WithLogging logs every request and response at debug level.
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) { c.verbose = enabled }
}

// WithCookieJar keeps cookies between requests, for vendors that issue a
// session cookie on a bootstrap call.
func WithCookieJar() ClientOption {
	return func(c *Client) {
		if jar, err := cookiejar.New(nil); err == nil {
			c.hc.Jar = jar
		}
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		hc:     &http.Client{Timeout: defaultTimeout},
		header: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a response outside the 2xx range. Body holds at most the
// first 512 bytes.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode JSON response: %w", err)
	}
	return nil
}

func (r *Response) String() string {
	return string(r.Body)
}

// GET fetches path, relative to the base URL when one is set.
func (c *Client) GET(ctx context.Context, path string, query url.Values) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, span := trace.StartSpan(ctx, "http.GET")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", target))

	resp, err := c.get(ctx, target)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) get(ctx context.Context, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.header {
		req.Header[k] = vs
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		c.debug(ctx, "HTTP request failed", "url", target, "error", err)
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", target, err)
	}
	c.debug(ctx, "HTTP response", "url", target, "status", res.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(), "bytes", len(body))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: res.StatusCode, URL: target, Body: string(body)}
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: body}, nil
}

func (c *Client) debug(ctx context.Context, msg string, args ...any) {
	if c.verbose {
		logger.Debug(ctx, msg, args...)
	}
}

// YahooFinanceHeaders are browser-like headers Yahoo expects. An empty
// userAgent falls back to a desktop Chrome string.
func YahooFinanceHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = browserAgent
	}
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}
}
