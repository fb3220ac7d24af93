package fetch

import (
	"log/slog"
	"net/http"
	"time"
)

// Client is a retrying HTTP client for upstream data providers.
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	maxAttempts  int
	retryBackoff time.Duration
	retryJitter  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new upstream fetch client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       slog.Default(),
		maxAttempts:  3,
		retryBackoff: time.Second,
		retryJitter:  500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the total attempt budget and base backoff delay.
func WithRetries(attempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
