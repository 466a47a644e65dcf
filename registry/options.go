package registry

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithAPIVersion selects the registry API version. Version 1 uses the
// legacy bundle schema (artifact-version list); version 2 uses the
// current schema (binary list). Other versions are rejected at the call
// sites that depend on the schema.
func WithAPIVersion(v int) Option {
	return func(c *Client) {
		c.apiVersion = v
	}
}

// WithHTTPClient replaces the HTTP client used for all requests.
// Callers who need per-request timeouts should set them here.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger for request-level diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimitRetry tunes the retry budget applied to 429 responses.
// A retries value of zero disables retrying.
func WithRateLimitRetry(retries int, initialInterval time.Duration) Option {
	return func(c *Client) {
		c.rateLimitRetries = retries
		c.rateLimitInterval = initialInterval
	}
}
