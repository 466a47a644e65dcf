package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quayside/hoist/registry"
)

// Signing errors.
var (
	// ErrSignatureFailed is returned when one or more signature
	// submissions fail. Failures are aggregated so the operator sees
	// every failing key at once.
	ErrSignatureFailed = errors.New("pipeline: signature creation failed")

	// ErrNoContentHash is returned when a to-compute signature config is
	// given for a binary without a stored content hash.
	ErrNoContentHash = errors.New("pipeline: binary has no content hash to sign")
)

// SignatureConfig describes one signature to attach to a binary.
//
// A pre-computed config carries the signature bytes (bundle push path).
// A to-compute config names a private key to sign with (direct path);
// the signature covers the ASCII bytes of the uppercase hex SHA-256 of
// the binary content.
type SignatureConfig struct {
	// KeyID identifies the signing key: a key id for pre-computed
	// signatures, or a signing key PRN for computed ones.
	KeyID string

	// Signature is the pre-computed hex signature. Empty means compute.
	Signature string

	// PrivateKeyPath is the PEM-encoded PKCS #8 ed25519 private key used
	// when the signature must be computed.
	PrivateKeyPath string
}

// PreComputed builds a config carrying known signature bytes.
func PreComputed(keyID, signature string) SignatureConfig {
	return SignatureConfig{KeyID: keyID, Signature: signature}
}

// FromPrivateKey builds a config that signs with a local private key.
func FromPrivateKey(signingKeyPRN, privateKeyPath string) SignatureConfig {
	return SignatureConfig{KeyID: signingKeyPRN, PrivateKeyPath: privateKeyPath}
}

// NeedsComputation reports whether the signature must be computed.
func (c SignatureConfig) NeedsComputation() bool {
	return c.Signature == ""
}

// Signer resolves signature configurations into registry signature
// records, idempotently, and advances fully signed binaries to Signed.
type Signer struct {
	api    RegistryAPI
	logger *slog.Logger
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithSignerLogger sets the logger.
func WithSignerLogger(logger *slog.Logger) SignerOption {
	return func(s *Signer) {
		s.logger = logger
	}
}

// NewSigner creates a Signer talking to the given registry.
func NewSigner(api RegistryAPI, opts ...SignerOption) *Signer {
	s := &Signer{api: api}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Signer) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Sign resolves every config against the binary, then transitions it to
// Signed. Pre-computed signatures that already exist for the same key id
// are treated as satisfied, so re-running a finished push is a no-op.
// If any signature fails the binary is left un-advanced and the error
// names every failed key id.
func (s *Signer) Sign(ctx context.Context, binary *registry.Binary, configs []SignatureConfig) (*registry.Binary, error) {
	if len(configs) == 0 {
		return binary, nil
	}

	var failed []string
	for _, cfg := range configs {
		if err := s.resolve(ctx, binary, cfg); err != nil {
			s.log().Warn("signature failed", "prn", binary.PRN, "keyid", cfg.KeyID, "error", err)
			failed = append(failed, cfg.KeyID)
		}
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("%w: keyids %s", ErrSignatureFailed, strings.Join(failed, ", "))
	}

	signed := registry.BinaryStateSigned
	updated, err := s.api.UpdateBinary(ctx, binary.PRN, registry.UpdateBinaryParams{State: &signed})
	if err != nil {
		return nil, fmt.Errorf("transition to signed: %w", err)
	}
	return updated, nil
}

// resolve satisfies a single signature config.
func (s *Signer) resolve(ctx context.Context, binary *registry.Binary, cfg SignatureConfig) error {
	if cfg.NeedsComputation() {
		return s.computeAndSubmit(ctx, binary, cfg)
	}

	exists, err := s.signatureExists(ctx, binary, cfg.KeyID)
	if err != nil {
		return fmt.Errorf("check existing signature: %w", err)
	}
	if exists {
		s.log().Debug("signature already present", "prn", binary.PRN, "keyid", cfg.KeyID)
		return nil
	}

	_, err = s.api.CreateSignature(ctx, registry.CreateSignatureParams{
		BinaryPRN:       binary.PRN,
		Signature:       cfg.Signature,
		SigningKeyKeyID: cfg.KeyID,
	})
	return err
}

// computeAndSubmit signs the binary's stored content hash with the
// configured private key and submits the result.
func (s *Signer) computeAndSubmit(ctx context.Context, binary *registry.Binary, cfg SignatureConfig) error {
	if binary.Hash == "" {
		return ErrNoContentHash
	}
	key, err := LoadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("load private key: %w", err)
	}

	_, err = s.api.CreateSignature(ctx, registry.CreateSignatureParams{
		BinaryPRN:     binary.PRN,
		Signature:     SignHash(key, binary.Hash),
		SigningKeyPRN: cfg.KeyID,
	})
	return err
}

// signatureExists reports whether the binary already carries a
// signature for the key id, checking the record first and falling back
// to a list call.
func (s *Signer) signatureExists(ctx context.Context, binary *registry.Binary, keyID string) (bool, error) {
	for _, sig := range binary.Signatures {
		if sig.KeyID == keyID {
			return true, nil
		}
	}
	sigs, err := s.api.ListSignatures(ctx, binary.PRN)
	if err != nil {
		return false, err
	}
	for _, sig := range sigs {
		if sig.KeyID == keyID {
			return true, nil
		}
	}
	return false, nil
}
