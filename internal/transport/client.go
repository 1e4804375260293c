// Package transport is the JSON over HTTP client shared by the order, payment
// and spam protection senders. It retries network failures, 429 and 5xx
// responses, and tags every mutating request with an idempotency key.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/checkout-orchestrator/internal/transport/circuitbreaker"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryAttempts = 2
	defaultRetryDelay    = 500 * time.Millisecond
	maxIdempotencyKeyLen = 255
)

// ErrCircuitOpen is returned without sending when the endpoint's circuit is open.
var ErrCircuitOpen = errors.New("transport: circuit open")

// HTTPError is returned for a non-2xx response after retries are exhausted.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("transport: %s %s returned HTTP %d: %s", e.Method, e.Path, e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Retryable reports whether the response status is worth another attempt.
func (e *HTTPError) Retryable() bool {
	return retryableStatus(e.StatusCode)
}

// Client sends JSON requests to a single base URL.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	retryAttempts int
	retryDelay    time.Duration
	headers       map[string]string
	logger        *slog.Logger
	breaker       *circuitbreaker.CircuitBreaker
	breakerKey    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetry sets the number of extra attempts and the delay between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithCircuitBreaker guards every request of the client with cb under key.
// 4xx responses count as successes since the endpoint answered.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker, key string) Option {
	return func(c *Client) {
		c.breaker = cb
		c.breakerKey = key
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: defaultTimeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		headers:       make(map[string]string),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL every request path is joined to.
func (c *Client) BaseURL() string { return c.baseURL }

// IdempotencyKey builds a unique key scoped to a caller-supplied prefix.
func IdempotencyKey(prefix string) string {
	key := uuid.NewString()
	if prefix != "" {
		key = prefix + "-" + key
	}
	if len(key) > maxIdempotencyKeyLen {
		return key[:maxIdempotencyKeyLen]
	}
	return key
}

// Get sends a GET request and decodes a 2xx response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, nil)
}

// Post sends in as JSON and decodes a 2xx response into out. out may be nil.
func (c *Client) Post(ctx context.Context, path string, in, out any, headers map[string]string) error {
	return c.Do(ctx, http.MethodPost, path, in, out, headers)
}

// Do sends a request with a JSON body (when in is non-nil) and decodes a 2xx
// JSON response into out (when out is non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any, headers map[string]string) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("transport: encode %s %s: %w", method, path, err)
		}
	}

	if c.breaker != nil && !c.breaker.AllowRequest(c.breakerKey) {
		return fmt.Errorf("%w: %s %s", ErrCircuitOpen, method, path)
	}

	err := c.do(ctx, method, path, payload, out, headers)
	if c.breaker != nil {
		var httpErr *HTTPError
		switch {
		case err == nil, errors.As(err, &httpErr) && !httpErr.Retryable():
			c.breaker.RecordSuccess(c.breakerKey)
		case ctx.Err() == nil:
			c.breaker.RecordFailure(c.breakerKey)
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any, headers map[string]string) error {
	idempotencyKey := ""
	if method != http.MethodGet {
		idempotencyKey = IdempotencyKey(headers["Idempotency-Key"])
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug("transport: retrying request", "method", method, "path", path, "attempt", attempt+1, "error", lastErr)
			if err := sleep(ctx, c.retryDelay); err != nil {
				return err
			}
		}

		body, status, err := c.roundTrip(ctx, method, path, payload, headers, idempotencyKey)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("transport: %s %s attempt %d: %w", method, path, attempt+1, err)
			continue
		}

		if status >= 200 && status < 300 {
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("transport: decode %s %s: %w", method, path, err)
			}
			return nil
		}

		httpErr := &HTTPError{Method: method, Path: path, StatusCode: status, Body: body}
		if !httpErr.Retryable() {
			return httpErr
		}
		lastErr = httpErr
	}
	return lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, headers map[string]string, idempotencyKey string) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
