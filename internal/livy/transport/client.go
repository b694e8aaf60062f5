// Package transport is a small JSON-over-HTTP client for the livy REST API.
// Every verb serializes the request body as JSON, decodes the response body
// as JSON and fails on any non-2xx status.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

// RequestedByHeader is required by gateways running with CSRF protection enabled
const RequestedByHeader = "X-Requested-By"

// Error is returned for connection failures and non-2xx responses
type Error struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Body       string // response body, if any
	Err        error  // underlying connection error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client issues JSON requests against a fixed base URL
type Client struct {
	rc      *resty.Client
	baseURL string
	logger  *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rc.SetTimeout(d)
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.rc.SetHeader(key, value)
	}
}

// New creates a client rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		rc:      resty.New(),
		baseURL: baseURL,
		logger:  slog.Default(),
	}
	c.rc.SetBaseURL(baseURL)
	c.rc.SetHeader(RequestedByHeader, "livyc")
	c.rc.SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL every path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the response into out (which may be nil)
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with body encoded as JSON and decodes the response into out
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Delete issues a DELETE and decodes the response into out (which may be nil)
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// Close releases the underlying connection pool
func (c *Client) Close() error {
	return c.rc.Close()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	res, err := req.Execute(method, path)
	if err != nil {
		return &Error{Method: method, Path: path, Err: err}
	}

	c.logger.DebugContext(ctx, "livy_request",
		"method", method,
		"path", path,
		"status", res.StatusCode(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	payload := res.String()
	if !res.IsSuccess() {
		return &Error{Method: method, Path: path, StatusCode: res.StatusCode(), Body: payload}
	}

	if out == nil || strings.TrimSpace(payload) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: res.StatusCode(),
			Body:       payload,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}
