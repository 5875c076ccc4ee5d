package common

import (
	"log/slog"
	"net/http"
)

// DefaultUserAgent identifies requests when no version-specific agent is configured
const DefaultUserAgent = "nodellm"

// BaseClient contains common client configuration shared across all LLM providers
type BaseClient struct {
	HTTPClient       *http.Client
	Logger           *slog.Logger
	MaxAttempts      int
	UserAgent        string
	MaxRequestBytes  int64
	MaxResponseBytes int64
	Recorder         Recorder
}

// ClientOption configures a BaseClient using the functional options pattern
type ClientOption func(*BaseClient)

// WithLogger sets the logger for any client
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *BaseClient) {
		c.Logger = logger
	}
}

// WithMaxAttempts overrides the binding's attempt count; values are clamped to [1, 5]
func WithMaxAttempts(attempts int) ClientOption {
	return func(c *BaseClient) {
		c.MaxAttempts = attempts
	}
}

// WithHTTPClient sets the HTTP client for any client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *BaseClient) {
		c.HTTPClient = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(userAgent string) ClientOption {
	return func(c *BaseClient) {
		c.UserAgent = userAgent
	}
}

// WithSizeLimits overrides the request and response body ceilings
func WithSizeLimits(maxRequestBytes, maxResponseBytes int64) ClientOption {
	return func(c *BaseClient) {
		c.MaxRequestBytes = maxRequestBytes
		c.MaxResponseBytes = maxResponseBytes
	}
}

// WithRecorder sets the per-attempt metrics recorder
func WithRecorder(r Recorder) ClientOption {
	return func(c *BaseClient) {
		c.Recorder = r
	}
}

// NewBaseClient creates a base client with sensible defaults;
// defaultAttempts comes from the provider binding's retry policy
func NewBaseClient(defaultAttempts int, opts ...ClientOption) *BaseClient {
	c := &BaseClient{
		MaxAttempts:      defaultAttempts,
		UserAgent:        DefaultUserAgent,
		MaxRequestBytes:  DefaultMaxRequestBytes,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.HTTPClient == nil {
		c.HTTPClient = NewHTTPClient()
	}
	return c
}

// Transport returns a Transport bound to the client's HTTP settings
func (c *BaseClient) Transport() *Transport {
	return &Transport{
		Client:           c.HTTPClient,
		MaxRequestBytes:  c.MaxRequestBytes,
		MaxResponseBytes: c.MaxResponseBytes,
		Logger:           c.Logger,
	}
}

// RetryPolicy returns the effective retry policy
func (c *BaseClient) RetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: c.MaxAttempts}
}
