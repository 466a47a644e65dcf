package registry

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Default client settings.
const (
	// DefaultAPIVersion selects the current bundle schema (list of
	// binaries). Version 1 is the legacy schema (list of artifact
	// versions).
	DefaultAPIVersion = 2

	// defaultRateLimitRetries bounds retries of 429 responses per call.
	defaultRateLimitRetries = 3

	// defaultRateLimitInterval seeds the exponential backoff for 429 retries.
	defaultRateLimitInterval = time.Second
)

// Client is a REST client for the artifact registry.
//
// A Client is safe for concurrent use. All calls are synchronous network
// round-trips; timeouts are the HTTP client's responsibility.
type Client struct {
	baseURL    string
	apiKey     string
	apiVersion int
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger

	rateLimitRetries  int
	rateLimitInterval time.Duration
}

// New creates a registry client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		apiVersion:        DefaultAPIVersion,
		httpClient:        http.DefaultClient,
		rateLimitRetries:  defaultRateLimitRetries,
		rateLimitInterval: defaultRateLimitInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIVersion reports the API version the client speaks. The bundle
// create call uses it to select the request schema.
func (c *Client) APIVersion() int {
	return c.apiVersion
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}
