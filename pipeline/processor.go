package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/quayside/hoist/registry"
)

// Polling policy for the registry's server-side hashing.
const (
	// DefaultPollInterval is the fixed delay between state checks.
	DefaultPollInterval = 10 * time.Second

	// DefaultPollAttempts bounds the number of state checks.
	DefaultPollAttempts = 30
)

// Processor errors.
var (
	// ErrContentRequired is returned when an Uploadable binary is
	// processed without content.
	ErrContentRequired = errors.New("pipeline: content required for uploadable binary")

	// ErrPollTimeout is returned when the polling budget is exhausted
	// before the registry reports the binary Signable.
	ErrPollTimeout = errors.New("pipeline: timed out waiting for binary to become signable")
)

// Processor orchestrates a binary through its lifecycle, delegating
// content transfer to an Uploader and signing to a Signer.
//
// Process is idempotent with respect to resumption: it re-reads the
// binary's current state from the registry before acting, so re-running
// it on a partially processed binary continues from where the registry
// says it is. Callers must serialize Process invocations per binary;
// the design provides no distributed lock.
type Processor struct {
	api          RegistryAPI
	uploader     *Uploader
	signer       *Signer
	signatures   []SignatureConfig
	pollInterval time.Duration
	pollAttempts int
	logger       *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithUploader replaces the default Uploader.
func WithUploader(u *Uploader) ProcessorOption {
	return func(p *Processor) {
		p.uploader = u
	}
}

// WithSigner replaces the default Signer.
func WithSigner(s *Signer) ProcessorOption {
	return func(p *Processor) {
		p.signer = s
	}
}

// WithSignatures sets the signature configurations applied when the
// binary reaches Signable. Without any, processing stops at Signable.
func WithSignatures(configs ...SignatureConfig) ProcessorOption {
	return func(p *Processor) {
		p.signatures = configs
	}
}

// WithPollPolicy tunes the Hashing→Signable polling loop.
func WithPollPolicy(interval time.Duration, attempts int) ProcessorOption {
	return func(p *Processor) {
		p.pollInterval = interval
		p.pollAttempts = attempts
	}
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor talking to the given registry.
func NewProcessor(api RegistryAPI, opts ...ProcessorOption) *Processor {
	p := &Processor{
		api:          api,
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.uploader == nil {
		p.uploader = NewUploader(api)
	}
	if p.signer == nil {
		p.signer = NewSigner(api)
	}
	if p.logger != nil {
		if p.uploader.logger == nil {
			p.uploader.logger = p.logger
		}
		if p.signer.logger == nil {
			p.signer.logger = p.logger
		}
	}
	return p
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// Process drives the binary forward from its current state. Content is
// required when the binary is Uploadable and ignored otherwise. Signed,
// Destroyed, and unknown (forward-compatible) states return the record
// unchanged without contacting the registry.
func (p *Processor) Process(ctx context.Context, binary *registry.Binary, content []byte) (*registry.Binary, error) {
	switch binary.State {
	case registry.BinaryStateSigned:
		p.log().Debug("binary already signed", "prn", binary.PRN)
		return binary, nil
	case registry.BinaryStateUploadable, registry.BinaryStateHashable,
		registry.BinaryStateHashing, registry.BinaryStateSignable:
		// Processable; refresh below.
	default:
		p.log().Debug("binary state not processable", "prn", binary.PRN, "state", binary.State)
		return binary, nil
	}

	// Re-read before acting: the record may be stale if a previous run
	// advanced the binary.
	current, err := p.api.GetBinary(ctx, binary.PRN)
	if err != nil {
		return nil, fmt.Errorf("refresh binary: %w", err)
	}

	switch current.State {
	case registry.BinaryStateUploadable:
		if content == nil {
			return nil, ErrContentRequired
		}
		uploaded, err := p.upload(ctx, current, content)
		if err != nil {
			return nil, err
		}
		return p.finish(ctx, uploaded)

	case registry.BinaryStateHashable:
		p.log().Info("resuming binary at hashable", "prn", current.PRN)
		hashing, err := p.transition(ctx, current, registry.BinaryStateHashing)
		if err != nil {
			return nil, err
		}
		return p.finish(ctx, hashing)

	case registry.BinaryStateHashing:
		return p.finish(ctx, current)

	case registry.BinaryStateSignable:
		if len(p.signatures) == 0 {
			return current, nil
		}
		return p.signer.Sign(ctx, current, p.signatures)

	case registry.BinaryStateSigned:
		return current, nil

	default:
		p.log().Debug("binary state not processable", "prn", current.PRN, "state", current.State)
		return current, nil
	}
}

// upload transfers content and hands the binary to the registry's
// hasher via the explicit Hashable then Hashing transitions.
func (p *Processor) upload(ctx context.Context, binary *registry.Binary, content []byte) (*registry.Binary, error) {
	if err := p.uploader.Upload(ctx, binary, content); err != nil {
		return nil, fmt.Errorf("upload binary: %w", err)
	}

	hashable, err := p.transition(ctx, binary, registry.BinaryStateHashable)
	if err != nil {
		return nil, err
	}
	return p.transition(ctx, hashable, registry.BinaryStateHashing)
}

// finish waits out server-side hashing, then signs when signing is
// configured. Without signing config the binary is returned at
// Signable; a later run can pick it up from there.
func (p *Processor) finish(ctx context.Context, binary *registry.Binary) (*registry.Binary, error) {
	p.log().Info("waiting for server-side hashing", "prn", binary.PRN)
	signable, err := p.waitForSignable(ctx, binary.PRN)
	if err != nil {
		return nil, err
	}
	if len(p.signatures) == 0 {
		return signable, nil
	}
	return p.signer.Sign(ctx, signable, p.signatures)
}

// waitForSignable polls at a fixed interval until the registry reports
// the binary Signable. Exhausting the budget is a terminal error.
func (p *Processor) waitForSignable(ctx context.Context, binaryPRN string) (*registry.Binary, error) {
	var signable *registry.Binary

	op := func() error {
		binary, err := p.api.GetBinary(ctx, binaryPRN)
		if err != nil {
			return err
		}
		if binary.State != registry.BinaryStateSignable {
			return fmt.Errorf("binary not yet signable (state %s)", binary.State)
		}
		signable = binary
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(p.pollInterval),
			uint64(max(p.pollAttempts-1, 0)),
		),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPollTimeout, err)
	}
	return signable, nil
}

// transition applies a validated state change through the registry.
func (p *Processor) transition(ctx context.Context, binary *registry.Binary, to registry.BinaryState) (*registry.Binary, error) {
	if err := registry.Transition(binary.State, to); err != nil {
		return nil, err
	}
	state := to
	updated, err := p.api.UpdateBinary(ctx, binary.PRN, registry.UpdateBinaryParams{State: &state})
	if err != nil {
		return nil, fmt.Errorf("update binary state to %s: %w", to, err)
	}
	p.log().Debug("binary state updated", "prn", binary.PRN, "state", to)
	return updated, nil
}
