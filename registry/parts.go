package registry

import (
	"context"
	"net/http"
	"net/url"
)

// MaxPartIndex is the highest part index the registry accepts.
const MaxPartIndex = 10_000

// PartState is the registry-side validity state of an uploaded part.
type PartState string

// Binary part states.
const (
	PartStatePending PartState = "pending"
	PartStateValid   PartState = "valid"
)

// BinaryPart is one uploaded chunk of a binary's content. Parts are
// addressed by 1-based index; re-submitting an index overwrites the
// prior part.
type BinaryPart struct {
	Index              int       `json:"index"`
	Size               uint64    `json:"size"`
	Hash               string    `json:"hash"` // lowercase hex SHA-256
	State              PartState `json:"state"`
	PresignedUploadURL string    `json:"presigned_upload_url,omitempty"`
}

// CreateBinaryPartParams are the parameters for CreateBinaryPart.
type CreateBinaryPartParams struct {
	Index              int    `json:"index"`
	Size               uint64 `json:"size"`
	Hash               string `json:"hash"`
	ExpectedBinarySize uint64 `json:"expected_binary_size"`
}

type binaryPartEnvelope struct {
	BinaryPart BinaryPart `json:"binary_part"`
}

type binaryPartListEnvelope struct {
	BinaryParts []BinaryPart `json:"binary_parts"`
	NextPage    string       `json:"next_page,omitempty"`
}

// CreateBinaryPart registers a part and returns its time-limited upload
// target URL.
func (c *Client) CreateBinaryPart(ctx context.Context, binaryPRN string, params CreateBinaryPartParams) (*BinaryPart, error) {
	var env binaryPartEnvelope
	path := "/binaries/" + url.PathEscape(binaryPRN) + "/parts"
	if err := c.do(ctx, http.MethodPost, path, nil, params, &env); err != nil {
		return nil, err
	}
	return &env.BinaryPart, nil
}

// ListBinaryParts lists the parts already registered for a binary.
func (c *Client) ListBinaryParts(ctx context.Context, binaryPRN string, params ListParams) ([]BinaryPart, string, error) {
	var env binaryPartListEnvelope
	path := "/binaries/" + url.PathEscape(binaryPRN) + "/parts"
	if err := c.do(ctx, http.MethodGet, path, params.values(), nil, &env); err != nil {
		return nil, "", err
	}
	return env.BinaryParts, env.NextPage, nil
}
