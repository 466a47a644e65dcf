package registry

import (
	"context"
	"net/http"
	"net/url"
)

// ArtifactVersion is one version of an artifact.
type ArtifactVersion struct {
	PRN            string         `json:"prn"`
	ArtifactPRN    string         `json:"artifact_prn"`
	Version        string         `json:"version"`
	Description    string         `json:"description,omitempty"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
}

// CreateArtifactVersionParams are the parameters for CreateArtifactVersion.
type CreateArtifactVersionParams struct {
	ArtifactPRN    string         `json:"artifact_prn"`
	Version        string         `json:"version"`
	ID             string         `json:"id,omitempty"`
	Description    string         `json:"description,omitempty"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
}

type artifactVersionEnvelope struct {
	ArtifactVersion ArtifactVersion `json:"artifact_version"`
}

type artifactVersionListEnvelope struct {
	ArtifactVersions []ArtifactVersion `json:"artifact_versions"`
	NextPage         string            `json:"next_page,omitempty"`
}

// CreateArtifactVersion creates a version under an artifact.
func (c *Client) CreateArtifactVersion(ctx context.Context, params CreateArtifactVersionParams) (*ArtifactVersion, error) {
	var env artifactVersionEnvelope
	if err := c.do(ctx, http.MethodPost, "/artifact_versions", nil, params, &env); err != nil {
		return nil, err
	}
	return &env.ArtifactVersion, nil
}

// GetArtifactVersion fetches an artifact version by PRN.
func (c *Client) GetArtifactVersion(ctx context.Context, versionPRN string) (*ArtifactVersion, error) {
	var env artifactVersionEnvelope
	if err := c.do(ctx, http.MethodGet, "/artifact_versions/"+url.PathEscape(versionPRN), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.ArtifactVersion, nil
}

// ListArtifactVersions lists versions matching the search expression.
func (c *Client) ListArtifactVersions(ctx context.Context, params ListParams) ([]ArtifactVersion, string, error) {
	var env artifactVersionListEnvelope
	if err := c.do(ctx, http.MethodGet, "/artifact_versions", params.values(), nil, &env); err != nil {
		return nil, "", err
	}
	return env.ArtifactVersions, env.NextPage, nil
}

// DeleteArtifactVersion deletes an artifact version by PRN.
func (c *Client) DeleteArtifactVersion(ctx context.Context, versionPRN string) error {
	return c.do(ctx, http.MethodDelete, "/artifact_versions/"+url.PathEscape(versionPRN), nil, nil, nil)
}
