package hoist

import (
	"context"
	"errors"
	"fmt"

	"github.com/quayside/hoist/bundle"
	"github.com/quayside/hoist/prname"
	"github.com/quayside/hoist/registry"
)

// BinarySpec identifies the binary a caller wants to exist: its place
// in the resource graph plus the local content's hash and size.
type BinarySpec struct {
	ArtifactVersionPRN string
	Target             string
	Hash               string // lowercase hex SHA-256
	Size               uint64
	ID                 string
	Description        string
	CustomMetadata     map[string]any
}

// EnsureBinary finds or creates the binary matching the spec's target
// and artifact version.
//
// An existing binary whose stored hash and size equal the spec's is
// returned unchanged, so re-running an ingest is idempotent. On a
// mismatch, a Signed binary is a hard conflict; any other state is
// reset to Uploadable and its hash and size updated, restarting the
// pipeline from scratch. More than one match is ErrAmbiguousBinary.
func (c *Client) EnsureBinary(ctx context.Context, spec BinarySpec) (*registry.Binary, error) {
	search := fmt.Sprintf("artifact_version_prn:'%s' and target:'%s'", spec.ArtifactVersionPRN, spec.Target)
	matches, _, err := c.reg.ListBinaries(ctx, registry.ListParams{Search: search})
	if err != nil {
		return nil, fmt.Errorf("search binaries: %w", err)
	}

	switch len(matches) {
	case 0:
		binary, err := c.reg.CreateBinary(ctx, registry.CreateBinaryParams{
			ArtifactVersionPRN: spec.ArtifactVersionPRN,
			Target:             spec.Target,
			Hash:               spec.Hash,
			Size:               spec.Size,
			ID:                 spec.ID,
			Description:        spec.Description,
			CustomMetadata:     spec.CustomMetadata,
		})
		if err != nil {
			return nil, fmt.Errorf("create binary: %w", err)
		}
		c.log().Info("created binary", "prn", binary.PRN, "target", spec.Target)
		return binary, nil

	case 1:
		return c.reconcileBinary(ctx, &matches[0], spec)

	default:
		return nil, fmt.Errorf("%w: target %s, version %s (%d matches)",
			ErrAmbiguousBinary, spec.Target, spec.ArtifactVersionPRN, len(matches))
	}
}

// reconcileBinary resolves an existing record against the local
// content.
func (c *Client) reconcileBinary(ctx context.Context, binary *registry.Binary, spec BinarySpec) (*registry.Binary, error) {
	if binary.Hash == spec.Hash && binary.Size == spec.Size {
		c.log().Debug("binary already current", "prn", binary.PRN, "state", binary.State)
		return binary, nil
	}

	if binary.State == registry.BinaryStateSigned {
		return nil, fmt.Errorf("%w: version %s, target %s has hash %s, local content has %s",
			ErrSignedImmutable, spec.ArtifactVersionPRN, spec.Target, binary.Hash, spec.Hash)
	}

	c.log().Warn("binary content changed, resetting",
		"prn", binary.PRN,
		"state", binary.State,
		"stored_hash", binary.Hash,
		"local_hash", spec.Hash,
	)

	uploadable := registry.BinaryStateUploadable
	reset, err := c.reg.UpdateBinary(ctx, binary.PRN, registry.UpdateBinaryParams{State: &uploadable})
	if err != nil {
		return nil, fmt.Errorf("reset binary: %w", err)
	}

	refreshed, err := c.reg.UpdateBinary(ctx, reset.PRN, registry.UpdateBinaryParams{
		Hash: &spec.Hash,
		Size: &spec.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("update binary hash: %w", err)
	}
	return refreshed, nil
}

// ensureArtifact finds or creates an artifact by its deterministic id.
// Lookup errors other than not-found are propagated, not swallowed.
func (c *Client) ensureArtifact(ctx context.Context, builder *prn.Builder, artifactID string, info bundle.Artifact) (string, error) {
	artifactPRN, err := builder.Artifact(artifactID)
	if err != nil {
		return "", fmt.Errorf("build artifact PRN: %w", err)
	}

	existing, err := c.reg.GetArtifact(ctx, artifactPRN)
	if err == nil {
		c.log().Debug("found existing artifact", "name", info.Name, "prn", existing.PRN)
		return existing.PRN, nil
	}
	if !errors.Is(err, registry.ErrNotFound) {
		return "", fmt.Errorf("look up artifact %s: %w", info.Name, err)
	}

	created, err := c.reg.CreateArtifact(ctx, registry.CreateArtifactParams{
		Name:        info.Name,
		ID:          artifactID,
		Description: info.Description,
	})
	if err != nil {
		return "", fmt.Errorf("create artifact %s: %w", info.Name, err)
	}
	c.log().Info("created artifact", "name", info.Name, "prn", created.PRN)
	return created.PRN, nil
}

// ensureArtifactVersion finds or creates a version under an artifact.
func (c *Client) ensureArtifactVersion(ctx context.Context, builder *prn.Builder, artifactPRN, versionID string, info bundle.Version) (string, error) {
	versionPRN, err := builder.ArtifactVersion(versionID)
	if err != nil {
		return "", fmt.Errorf("build artifact version PRN: %w", err)
	}

	existing, err := c.reg.GetArtifactVersion(ctx, versionPRN)
	if err == nil {
		c.log().Debug("found existing artifact version", "version", info.Version, "prn", existing.PRN)
		return existing.PRN, nil
	}
	if !errors.Is(err, registry.ErrNotFound) {
		return "", fmt.Errorf("look up artifact version %s: %w", info.Version, err)
	}

	created, err := c.reg.CreateArtifactVersion(ctx, registry.CreateArtifactVersionParams{
		ArtifactPRN: artifactPRN,
		Version:     info.Version,
		ID:          versionID,
		Description: info.Description,
	})
	if err != nil {
		return "", fmt.Errorf("create artifact version %s: %w", info.Version, err)
	}
	c.log().Info("created artifact version", "version", info.Version, "prn", created.PRN)
	return created.PRN, nil
}
