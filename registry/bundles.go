package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Bundle is a named collection of binaries deployable as a unit. Two
// schema variants exist: V1 references artifact versions (legacy), V2
// references binaries with per-binary custom metadata. The interface
// exposes what both share.
type Bundle interface {
	// ResourceName returns the bundle's PRN.
	ResourceName() string

	// BundleName returns the optional display name.
	BundleName() string
}

// BundleV1 is the legacy bundle schema.
type BundleV1 struct {
	PRN                 string   `json:"prn"`
	Name                string   `json:"name,omitempty"`
	ArtifactVersionPRNs []string `json:"artifact_version_prns"`
}

// ResourceName returns the bundle's PRN.
func (b *BundleV1) ResourceName() string { return b.PRN }

// BundleName returns the optional display name.
func (b *BundleV1) BundleName() string { return b.Name }

// BundleV2 is the current bundle schema.
type BundleV2 struct {
	PRN      string         `json:"prn"`
	Name     string         `json:"name,omitempty"`
	Hash     string         `json:"hash,omitempty"`
	Binaries []BundleBinary `json:"binaries"`
}

// ResourceName returns the bundle's PRN.
func (b *BundleV2) ResourceName() string { return b.PRN }

// BundleName returns the optional display name.
func (b *BundleV2) BundleName() string { return b.Name }

// BundleBinary is one binary reference inside a V2 bundle.
type BundleBinary struct {
	PRN            string         `json:"prn"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
}

// CreateBundleParamsV1 creates a bundle with the legacy schema.
type CreateBundleParamsV1 struct {
	ArtifactVersionPRNs []string `json:"artifact_version_prns"`
	ID                  string   `json:"id,omitempty"`
	Name                string   `json:"name,omitempty"`
}

// CreateBundleParamsV2 creates a bundle with the current schema.
type CreateBundleParamsV2 struct {
	Binaries []BundleBinary `json:"binaries"`
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
}

// rawBundle is the wire shape shared by both schema variants.
type rawBundle struct {
	PRN                 string         `json:"prn"`
	Name                string         `json:"name,omitempty"`
	Hash                string         `json:"hash,omitempty"`
	Binaries            []BundleBinary `json:"binaries,omitempty"`
	ArtifactVersionPRNs []string       `json:"artifact_version_prns,omitempty"`
}

type bundleEnvelope struct {
	Bundle json.RawMessage `json:"bundle"`
}

// decodeBundle picks the schema variant from the wire shape: the
// presence of an artifact-version list marks a V1 record.
func decodeBundle(raw json.RawMessage) (Bundle, error) {
	var rb rawBundle
	if err := json.Unmarshal(raw, &rb); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if rb.ArtifactVersionPRNs != nil {
		return &BundleV1{PRN: rb.PRN, Name: rb.Name, ArtifactVersionPRNs: rb.ArtifactVersionPRNs}, nil
	}
	return &BundleV2{PRN: rb.PRN, Name: rb.Name, Hash: rb.Hash, Binaries: rb.Binaries}, nil
}

// CreateBundleV1 creates a bundle using the legacy schema. The client
// must be configured with API version 1.
func (c *Client) CreateBundleV1(ctx context.Context, params CreateBundleParamsV1) (Bundle, error) {
	if c.apiVersion != 1 {
		return nil, fmt.Errorf("%w: v1 bundle create requires api version 1, have %d", ErrUnsupportedAPIVersion, c.apiVersion)
	}
	return c.createBundle(ctx, params)
}

// CreateBundleV2 creates a bundle using the current schema.
func (c *Client) CreateBundleV2(ctx context.Context, params CreateBundleParamsV2) (Bundle, error) {
	if c.apiVersion < 2 {
		return nil, fmt.Errorf("%w: v2 bundle create requires api version >= 2, have %d", ErrUnsupportedAPIVersion, c.apiVersion)
	}
	return c.createBundle(ctx, params)
}

func (c *Client) createBundle(ctx context.Context, params any) (Bundle, error) {
	var env bundleEnvelope
	if err := c.do(ctx, http.MethodPost, "/bundles", nil, params, &env); err != nil {
		return nil, err
	}
	return decodeBundle(env.Bundle)
}

// GetBundle fetches a bundle by PRN. The returned value is *BundleV1 or
// *BundleV2 depending on the record's schema.
func (c *Client) GetBundle(ctx context.Context, bundlePRN string) (Bundle, error) {
	var env bundleEnvelope
	if err := c.do(ctx, http.MethodGet, "/bundles/"+url.PathEscape(bundlePRN), nil, nil, &env); err != nil {
		return nil, err
	}
	return decodeBundle(env.Bundle)
}

// DeleteBundle deletes a bundle by PRN.
func (c *Client) DeleteBundle(ctx context.Context, bundlePRN string) error {
	return c.do(ctx, http.MethodDelete, "/bundles/"+url.PathEscape(bundlePRN), nil, nil, nil)
}
