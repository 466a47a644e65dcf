package hoist

import (
	"errors"

	"github.com/quayside/hoist/bundle"
	"github.com/quayside/hoist/pipeline"
	"github.com/quayside/hoist/registry"
)

// Client errors.
var (
	// ErrNoRegistry is returned by NewClient when neither a base URL nor
	// a registry implementation is configured.
	ErrNoRegistry = errors.New("hoist: no registry configured")

	// ErrEmptyContent is returned when a binary's content is empty.
	// Rejected before any network call.
	ErrEmptyContent = errors.New("hoist: binary content is empty")

	// ErrNoContent is returned when a binary is created without a
	// content source or an explicit hash and size.
	ErrNoContent = errors.New("hoist: content path or hash and size required")

	// ErrAmbiguousBinary is returned when more than one binary matches a
	// target and artifact version. Requires operator intervention.
	ErrAmbiguousBinary = errors.New("hoist: multiple binaries match target and artifact version")

	// ErrSignedImmutable is returned when local content conflicts with a
	// binary that already reached Signed.
	ErrSignedImmutable = errors.New("hoist: signed binary is immutable")

	// ErrBundleSchema is returned when a pull targets a legacy bundle,
	// which lacks the binary references and hash the archive needs.
	ErrBundleSchema = errors.New("hoist: bundle pull requires the v2 schema")
)

// Errors re-exported from registry.
var (
	// ErrNotFound is returned when a registry resource does not exist.
	ErrNotFound = registry.ErrNotFound

	// ErrUnauthorized is returned when the API key is missing or rejected.
	ErrUnauthorized = registry.ErrUnauthorized

	// ErrRateLimited is returned when the registry throttles a request
	// past the retry budget.
	ErrRateLimited = registry.ErrRateLimited
)

// Errors re-exported from pipeline.
var (
	// ErrPollTimeout is returned when server-side hashing does not
	// finish within the polling budget.
	ErrPollTimeout = pipeline.ErrPollTimeout

	// ErrSignatureFailed is returned when one or more signature
	// submissions fail; the message names every failed key id.
	ErrSignatureFailed = pipeline.ErrSignatureFailed
)

// Errors re-exported from bundle.
var (
	// ErrPayloadMissing is returned when an archive lacks a payload for
	// a manifest entry.
	ErrPayloadMissing = bundle.ErrPayloadMissing
)
