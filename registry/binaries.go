package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// BinaryState is a binary's lifecycle state.
//
// The forward order is Uploadable → Hashable → Hashing → Signable →
// Signed; Destroyed is terminal and reachable from any non-Signed state.
// Unknown states are tolerated by callers (forward compatibility) but
// never produced by this client.
type BinaryState string

// Binary lifecycle states.
const (
	BinaryStateUploadable BinaryState = "uploadable"
	BinaryStateHashable   BinaryState = "hashable"
	BinaryStateHashing    BinaryState = "hashing"
	BinaryStateSignable   BinaryState = "signable"
	BinaryStateSigned     BinaryState = "signed"
	BinaryStateDestroyed  BinaryState = "destroyed"
)

// ErrInvalidTransition is returned by Transition for state changes the
// lifecycle does not permit.
var ErrInvalidTransition = errors.New("registry: invalid binary state transition")

// forwardOrder indexes the linear part of the lifecycle.
var forwardOrder = map[BinaryState]int{
	BinaryStateUploadable: 0,
	BinaryStateHashable:   1,
	BinaryStateHashing:    2,
	BinaryStateSignable:   3,
	BinaryStateSigned:     4,
}

// Known reports whether s is a state this client understands.
func (s BinaryState) Known() bool {
	_, ok := forwardOrder[s]
	return ok || s == BinaryStateDestroyed
}

// Transition validates a state change against the lifecycle. Forward
// moves advance exactly one step; resetting to Uploadable is permitted
// from any non-Signed state (hash mismatch recovery); Destroyed is
// reachable from any non-Signed state. Same-state transitions are
// no-ops and allowed.
func Transition(from, to BinaryState) error {
	if from == to {
		return nil
	}
	if from == BinaryStateSigned || from == BinaryStateDestroyed {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	if to == BinaryStateDestroyed || to == BinaryStateUploadable {
		return nil
	}
	fi, fok := forwardOrder[from]
	ti, tok := forwardOrder[to]
	if !fok || !tok || ti != fi+1 {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Binary is a content-addressed artifact record tracked through the
// upload/hash/sign lifecycle.
type Binary struct {
	PRN                string         `json:"prn"`
	ArtifactVersionPRN string         `json:"artifact_version_prn"`
	Target             string         `json:"target"`
	State              BinaryState    `json:"state"`
	Hash               string         `json:"hash,omitempty"` // lowercase hex SHA-256
	Size               uint64         `json:"size,omitempty"`
	Description        string         `json:"description,omitempty"`
	CustomMetadata     map[string]any `json:"custom_metadata,omitempty"`
	Signatures         []Signature    `json:"signatures,omitempty"`
}

// CreateBinaryParams are the parameters for CreateBinary.
type CreateBinaryParams struct {
	ArtifactVersionPRN string         `json:"artifact_version_prn"`
	Target             string         `json:"target"`
	Hash               string         `json:"hash"`
	Size               uint64         `json:"size"`
	ID                 string         `json:"id,omitempty"`
	Description        string         `json:"description,omitempty"`
	CustomMetadata     map[string]any `json:"custom_metadata,omitempty"`
}

// UpdateBinaryParams are the parameters for UpdateBinary. Nil fields
// are left unchanged.
type UpdateBinaryParams struct {
	State          *BinaryState    `json:"state,omitempty"`
	Hash           *string         `json:"hash,omitempty"`
	Size           *uint64         `json:"size,omitempty"`
	Description    *string         `json:"description,omitempty"`
	CustomMetadata *map[string]any `json:"custom_metadata,omitempty"`
}

type binaryEnvelope struct {
	Binary Binary `json:"binary"`
}

type binaryListEnvelope struct {
	Binaries []Binary `json:"binaries"`
	NextPage string   `json:"next_page,omitempty"`
}

// CreateBinary registers a new binary record under an artifact version.
func (c *Client) CreateBinary(ctx context.Context, params CreateBinaryParams) (*Binary, error) {
	var env binaryEnvelope
	if err := c.do(ctx, http.MethodPost, "/binaries", nil, params, &env); err != nil {
		return nil, err
	}
	return &env.Binary, nil
}

// GetBinary fetches a binary by PRN.
func (c *Client) GetBinary(ctx context.Context, binaryPRN string) (*Binary, error) {
	var env binaryEnvelope
	if err := c.do(ctx, http.MethodGet, "/binaries/"+url.PathEscape(binaryPRN), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Binary, nil
}

// UpdateBinary patches a binary record. State changes are validated by
// the registry as well; use Transition locally to fail early.
func (c *Client) UpdateBinary(ctx context.Context, binaryPRN string, params UpdateBinaryParams) (*Binary, error) {
	var env binaryEnvelope
	if err := c.do(ctx, http.MethodPatch, "/binaries/"+url.PathEscape(binaryPRN), nil, params, &env); err != nil {
		return nil, err
	}
	return &env.Binary, nil
}

// ListBinaries lists binaries matching the search expression.
func (c *Client) ListBinaries(ctx context.Context, params ListParams) ([]Binary, string, error) {
	var env binaryListEnvelope
	if err := c.do(ctx, http.MethodGet, "/binaries", params.values(), nil, &env); err != nil {
		return nil, "", err
	}
	return env.Binaries, env.NextPage, nil
}

// DownloadBinary streams a binary's content. The registry redirects to
// a time-limited download URL; the returned reader is the payload body
// and must be closed by the caller.
func (c *Client) DownloadBinary(ctx context.Context, binaryPRN string) (io.ReadCloser, error) {
	u := c.baseURL + "/binaries/" + url.PathEscape(binaryPRN) + "/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download binary: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("download binary: %w", decodeAPIError(resp))
	}
	return resp.Body, nil
}
