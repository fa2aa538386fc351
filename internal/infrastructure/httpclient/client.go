// Package httpclient provides the shared HTTP client for upstream JSON APIs.
// It enforces a per-call timeout and retries rate-limit and server-error
// responses with exponential backoff. Retry logic lives here and only here;
// gateways must not layer their own retries on top.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"
)

// maxResponseSize limits upstream response bodies to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

var (
	// ErrTimeout means the per-call deadline expired before a response arrived.
	ErrTimeout = errors.New("httpclient: request timed out")
	// ErrAuthFailed means the upstream rejected our credentials (401/403).
	// Never retried: that would only mask credential misconfiguration.
	ErrAuthFailed = errors.New("httpclient: upstream rejected credentials")
	// ErrNotFound means the upstream returned 404. Gateways map it to an
	// empty collection rather than propagating a fault.
	ErrNotFound = errors.New("httpclient: resource not found")
	// ErrInvalidResponse means a 2xx body that could not be decoded as JSON.
	ErrInvalidResponse = errors.New("httpclient: invalid upstream response")
)

// UpstreamError reports a non-2xx upstream status that is neither an auth
// failure nor a 404: other 4xx immediately, 429/5xx after retries exhaust.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("httpclient: upstream returned HTTP %d", e.StatusCode)
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}
}

// Config configures a Client.
type Config struct {
	Timeout time.Duration
	// Retry overrides the default retry policy. Nil selects
	// DefaultRetryConfig; pointing at a zero RetryConfig disables retries.
	Retry *RetryConfig
	// Headers are sent on every request, typically static auth headers.
	Headers map[string]string
}

// Client is a JSON HTTP client with timeout and retry handling.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	retry      RetryConfig
}

// New creates a Client. A zero Timeout defaults to 15s.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	retry := DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	if retry.Multiplier <= 0 {
		retry.Multiplier = 2.0
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = 10 * time.Second
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		headers:    headers,
		retry:      retry,
	}
}

// Request represents an HTTP request to be executed.
type Request struct {
	Method      string
	URL         string
	QueryParams map[string]string
	Headers     map[string]string
	Body        any
}

// Response represents an HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body, reporting failures as
// ErrInvalidResponse so callers can distinguish them from transport faults.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// Do executes a request with retry logic. It returns a typed error for any
// non-2xx outcome; see the package errors for the taxonomy.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target, err := buildURL(req.URL, req.QueryParams)
	if err != nil {
		return nil, fmt.Errorf("httpclient: building URL: %w", err)
	}

	var bodyBytes []byte
	if req.Body != nil {
		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: marshaling request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			case <-time.After(c.backoffDelay(attempt)):
			}
		}

		resp, err := c.send(ctx, req, target, bodyBytes)
		if err != nil {
			if isTimeout(err) {
				// Timeouts already consumed the whole per-call budget;
				// retrying would multiply worst-case latency.
				return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			lastErr = fmt.Errorf("httpclient: %w", err)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return resp, fmt.Errorf("%w (HTTP %d)", ErrAuthFailed, resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			return resp, ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &UpstreamError{StatusCode: resp.StatusCode}
			continue
		default:
			return resp, &UpstreamError{StatusCode: resp.StatusCode}
		}
	}

	return nil, lastErr
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, queryParams map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:      http.MethodGet,
		URL:         rawURL,
		QueryParams: queryParams,
	})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, rawURL string, body any) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    rawURL,
		Body:   body,
	})
}

func (c *Client) send(ctx context.Context, req Request, target string, body []byte) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// backoffDelay computes the exponential backoff for the given attempt,
// capped at MaxDelay, with ±25% jitter.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := float64(c.retry.RetryDelay) * math.Pow(c.retry.Multiplier, float64(attempt-1))
	if delay > float64(c.retry.MaxDelay) {
		delay = float64(c.retry.MaxDelay)
	}
	jitter := delay * 0.25
	delay = delay + (rand.Float64()*2-1)*jitter
	return time.Duration(delay)
}

func buildURL(rawURL string, queryParams map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if len(queryParams) > 0 {
		q := u.Query()
		for k, v := range queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
