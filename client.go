package hoist

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quayside/hoist/pipeline"
	"github.com/quayside/hoist/registry"
)

// Client provides high-level operations against an artifact registry:
// binary ingestion, signing, and bundle push/pull.
type Client struct {
	reg            Registry
	logger         *slog.Logger
	partSize       uint64
	concurrency    int
	transferClient *http.Client
	progress       pipeline.ProgressFunc
	pollInterval   time.Duration
	pollAttempts   int
	lenientMatch   bool

	// Construction-only fields consumed by NewClient.
	baseURL    string
	apiKey     string
	apiVersion int
	httpClient *http.Client
}

// NewClient creates a Client. Configure either a base URL (a registry
// client is constructed internally) or an explicit Registry.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.reg == nil {
		if c.baseURL == "" {
			return nil, ErrNoRegistry
		}
		var regOpts []registry.Option
		if c.apiKey != "" {
			regOpts = append(regOpts, registry.WithAPIKey(c.apiKey))
		}
		if c.apiVersion != 0 {
			regOpts = append(regOpts, registry.WithAPIVersion(c.apiVersion))
		}
		if c.httpClient != nil {
			regOpts = append(regOpts, registry.WithHTTPClient(c.httpClient))
		}
		if c.logger != nil {
			regOpts = append(regOpts, registry.WithLogger(c.logger))
		}
		c.reg = registry.New(c.baseURL, regOpts...)
	}
	return c, nil
}

// Registry exposes the underlying registry for direct resource
// operations that need no orchestration.
func (c *Client) Registry() Registry {
	return c.reg
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// newProcessor builds a Processor carrying the client's transfer
// settings and the given signing configuration.
func (c *Client) newProcessor(signatures []pipeline.SignatureConfig) *pipeline.Processor {
	var upOpts []pipeline.UploaderOption
	if c.partSize > 0 {
		upOpts = append(upOpts, pipeline.WithPartSize(c.partSize))
	}
	if c.concurrency > 0 {
		upOpts = append(upOpts, pipeline.WithConcurrency(c.concurrency))
	}
	if c.transferClient != nil {
		upOpts = append(upOpts, pipeline.WithTransferClient(c.transferClient))
	}
	if c.progress != nil {
		upOpts = append(upOpts, pipeline.WithUploadProgress(c.progress))
	}
	if c.logger != nil {
		upOpts = append(upOpts, pipeline.WithUploadLogger(c.logger))
	}

	procOpts := []pipeline.ProcessorOption{
		pipeline.WithUploader(pipeline.NewUploader(c.reg, upOpts...)),
		pipeline.WithSignatures(signatures...),
	}
	if c.logger != nil {
		procOpts = append(procOpts,
			pipeline.WithSigner(pipeline.NewSigner(c.reg, pipeline.WithSignerLogger(c.logger))),
			pipeline.WithProcessorLogger(c.logger),
		)
	}
	if c.pollInterval > 0 && c.pollAttempts > 0 {
		procOpts = append(procOpts, pipeline.WithPollPolicy(c.pollInterval, c.pollAttempts))
	}
	return pipeline.NewProcessor(c.reg, procOpts...)
}
