package hoist

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quayside/hoist/pipeline"
)

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL sets the registry API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		c.baseURL = baseURL
		return nil
	}
}

// WithAPIKey sets the bearer token for registry calls.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithAPIVersion selects the registry API version, which governs the
// bundle schema (1 = legacy artifact-version lists, 2 = binary lists).
func WithAPIVersion(version int) Option {
	return func(c *Client) error {
		c.apiVersion = version
		return nil
	}
}

// WithHTTPClient sets the HTTP client for registry API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithRegistry injects a Registry directly, bypassing internal client
// construction. Mostly a test seam.
func WithRegistry(reg Registry) Option {
	return func(c *Client) error {
		c.reg = reg
		return nil
	}
}

// WithLogger sets the logger. Without one, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithPartSize sets the upload chunk size in bytes.
func WithPartSize(size uint64) Option {
	return func(c *Client) error {
		c.partSize = size
		return nil
	}
}

// WithConcurrency bounds the number of upload chunks in flight.
func WithConcurrency(n int) Option {
	return func(c *Client) error {
		c.concurrency = n
		return nil
	}
}

// WithTransferClient sets the HTTP client used for part byte transfers
// to pre-signed storage endpoints.
func WithTransferClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.transferClient = hc
		return nil
	}
}

// WithProgress sets a callback receiving cumulative upload progress.
func WithProgress(fn pipeline.ProgressFunc) Option {
	return func(c *Client) error {
		c.progress = fn
		return nil
	}
}

// WithPollPolicy tunes how long to wait for server-side hashing.
func WithPollPolicy(interval time.Duration, attempts int) Option {
	return func(c *Client) error {
		c.pollInterval = interval
		c.pollAttempts = attempts
		return nil
	}
}

// WithLenientMatch lets Push fall back to name and position matching
// when an archive payload's hash matches no manifest entry. Off by
// default; fallback matches are logged as warnings.
func WithLenientMatch() Option {
	return func(c *Client) error {
		c.lenientMatch = true
		return nil
	}
}
