package transport

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/metrics"
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the request rate against the source.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithSessionProvider sets the session cookie source.
func WithSessionProvider(session SessionProvider) ClientOption {
	return func(c *Client) {
		c.session = session
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithMetrics sets the metrics sink. A nil sink is fine.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// requestConfig carries per-request settings.
type requestConfig struct {
	header    http.Header
	operation string
	anonymous bool
}

func newRequestConfig(opts []RequestOption) *requestConfig {
	cfg := &requestConfig{
		header:    http.Header{},
		operation: "request",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.header.Add(key, value)
	}
}

// ForOperation labels the request in metrics and logs.
func ForOperation(name string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.operation = name
	}
}

// Anonymous suppresses the session cookie for this request. Used for
// endpoints that work without auth, and by the session layer itself.
func Anonymous() RequestOption {
	return func(cfg *requestConfig) {
		cfg.anonymous = true
	}
}
