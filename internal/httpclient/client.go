// Package httpclient wraps net/http with the request-level concerns every
// fetch strategy shares: rate limiting, a hard timeout, status checks, and a
// JSON content-type requirement.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout aborts requests to an upstream that has stopped answering.
const DefaultTimeout = 15 * time.Second

// Client is an HTTP client for the catalog endpoint.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithRateLimit sets requests per second against the upstream.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithBaseClient swaps the underlying http.Client, keeping the configured
// timeout. Used to route requests through an authorizing transport.
func WithBaseClient(base *http.Client) Option {
	return func(c *Client) {
		timeout := c.http.Timeout
		c.http = base
		if c.http.Timeout == 0 {
			c.http.Timeout = timeout
		}
	}
}

// New creates a new client.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a GET and returns the body. Non-2xx statuses and
// non-JSON content types are errors; the caller decodes the body itself.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP GET %s: status %d: %s", url, resp.StatusCode, truncate(string(body), 200))
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
		return nil, fmt.Errorf("HTTP GET %s: unexpected content type %q", url, ct)
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
