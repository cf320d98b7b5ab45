package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/metrics"
)

const (
	// DefaultUserAgent is sent on every request. The source serves a
	// different (reduced) page to clients without a browser agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultRateLimit is requests per second against the source.
	DefaultRateLimit = 4

	// maxBodySize caps how much of a response body is read. Company
	// pages run to a few hundred KB; anything larger is not a page we
	// want.
	maxBodySize = 10 * 1024 * 1024
)

// SessionProvider supplies the cookie attached to authenticated
// requests and is told when the source rejects it so the next call can
// acquire a fresh one.
type SessionProvider interface {
	Cookie(ctx context.Context) string
	Invalidate()
}

// Client performs GET requests against the source with rate limiting,
// fixed-delay retry, and session cookie handling.
type Client struct {
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	retry      RetryPolicy
	session    SessionProvider
	userAgent  string
	metrics    *metrics.Metrics
}

// New creates a transport client. The zero configuration talks to
// nothing useful; callers are expected to set at least a session
// provider for authenticated endpoints.
func New(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		retry:      DefaultRetryPolicy(),
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Response is the outcome of a completed request. The body is fully
// read and the connection released before Response is returned.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON parses the body as JSON. The second result is false when the
// body is not valid JSON, which callers treat as "this is an HTML
// page" rather than an error.
func (r *Response) JSON() (gjson.Result, bool) {
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(r.Body), true
}

// Get fetches a URL, retrying per the client's policy. Server errors,
// timeouts, and connection failures are retried after a fixed delay;
// auth rejections (401/403) invalidate the session before the retry so
// the next attempt carries a fresh cookie. Any other non-2xx status
// fails immediately. The returned error after exhausted attempts is a
// *RequestError wrapping the last failure.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Response, error) {
	cfg := newRequestConfig(opts)

	start := time.Now()
	defer func() {
		c.metrics.ObserveRequestDuration(time.Since(start).Seconds())
	}()

	var (
		lastErr    error
		lastStatus int
		timedOut   bool
	)

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.metrics.RecordRetry()
			if err := c.retry.wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, rawURL, cfg)
		if err != nil {
			if !isRetryableError(err) {
				c.metrics.RecordUpstream(cfg.operation, "error")
				return nil, &RequestError{URL: rawURL, Attempts: attempt, Timeout: isTimeout(err), Err: err}
			}
			lastErr = err
			lastStatus = 0
			timedOut = isTimeout(err)
			if c.logger != nil {
				c.logger.Warn().
					Err(err).
					Str("url", rawURL).
					Int("attempt", attempt).
					Msg("Request attempt failed")
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.metrics.RecordUpstream(cfg.operation, "success")
			if c.logger != nil {
				c.logger.Debug().
					Str("url", rawURL).
					Int("status_code", resp.StatusCode).
					Dur("duration", time.Since(start)).
					Msg("Request completed")
			}
			return resp, nil
		}

		if !retryable(resp.StatusCode) {
			c.metrics.RecordUpstream(cfg.operation, "error")
			return nil, &RequestError{URL: rawURL, StatusCode: resp.StatusCode, Attempts: attempt}
		}

		lastErr = nil
		lastStatus = resp.StatusCode
		timedOut = false

		if (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && c.session != nil {
			c.session.Invalidate()
		}

		if c.logger != nil {
			c.logger.Warn().
				Str("url", rawURL).
				Int("status_code", resp.StatusCode).
				Int("attempt", attempt).
				Msg("Request attempt rejected")
		}
	}

	c.metrics.RecordUpstream(cfg.operation, "error")
	if c.logger != nil {
		c.logger.Warn().
			Str("url", rawURL).
			Int("max_attempts", c.retry.MaxAttempts).
			Int("status_code", lastStatus).
			Err(lastErr).
			Msg("All retry attempts exhausted")
	}

	return nil, &RequestError{
		URL:        rawURL,
		StatusCode: lastStatus,
		Attempts:   c.retry.MaxAttempts,
		Timeout:    timedOut,
		Err:        lastErr,
	}
}

// attempt performs a single request. The per-attempt timeout bounds
// the whole attempt including the body read.
func (c *Client) attempt(ctx context.Context, rawURL string, cfg *requestConfig) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	attemptCtx := ctx
	if c.retry.PerAttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.retry.PerAttemptTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")
	if c.session != nil && !cfg.anonymous {
		if cookie := c.session.Cookie(attemptCtx); cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
	}
	for key, values := range cfg.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
