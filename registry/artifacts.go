package registry

import (
	"context"
	"net/http"
	"net/url"
)

// Artifact is a named artifact record owning versions.
type Artifact struct {
	PRN            string         `json:"prn"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
}

// CreateArtifactParams are the parameters for CreateArtifact.
type CreateArtifactParams struct {
	Name           string         `json:"name"`
	ID             string         `json:"id,omitempty"`
	Description    string         `json:"description,omitempty"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
}

// UpdateArtifactParams are the parameters for UpdateArtifact. Nil
// fields are left unchanged.
type UpdateArtifactParams struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type artifactEnvelope struct {
	Artifact Artifact `json:"artifact"`
}

type artifactListEnvelope struct {
	Artifacts []Artifact `json:"artifacts"`
	NextPage  string     `json:"next_page,omitempty"`
}

// CreateArtifact creates an artifact.
func (c *Client) CreateArtifact(ctx context.Context, params CreateArtifactParams) (*Artifact, error) {
	var env artifactEnvelope
	if err := c.do(ctx, http.MethodPost, "/artifacts", nil, params, &env); err != nil {
		return nil, err
	}
	return &env.Artifact, nil
}

// GetArtifact fetches an artifact by PRN.
func (c *Client) GetArtifact(ctx context.Context, artifactPRN string) (*Artifact, error) {
	var env artifactEnvelope
	if err := c.do(ctx, http.MethodGet, "/artifacts/"+url.PathEscape(artifactPRN), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Artifact, nil
}

// UpdateArtifact patches an artifact.
func (c *Client) UpdateArtifact(ctx context.Context, artifactPRN string, params UpdateArtifactParams) (*Artifact, error) {
	var env artifactEnvelope
	if err := c.do(ctx, http.MethodPatch, "/artifacts/"+url.PathEscape(artifactPRN), nil, params, &env); err != nil {
		return nil, err
	}
	return &env.Artifact, nil
}

// ListArtifacts lists artifacts.
func (c *Client) ListArtifacts(ctx context.Context, params ListParams) ([]Artifact, string, error) {
	var env artifactListEnvelope
	if err := c.do(ctx, http.MethodGet, "/artifacts", params.values(), nil, &env); err != nil {
		return nil, "", err
	}
	return env.Artifacts, env.NextPage, nil
}

// DeleteArtifact deletes an artifact by PRN.
func (c *Client) DeleteArtifact(ctx context.Context, artifactPRN string) error {
	return c.do(ctx, http.MethodDelete, "/artifacts/"+url.PathEscape(artifactPRN), nil, nil, nil)
}
