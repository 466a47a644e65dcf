package hoist

import (
	"context"
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/quayside/hoist/pipeline"
	"github.com/quayside/hoist/registry"
)

// CreateBinaryRequest describes one binary to ingest.
//
// Content comes from ContentPath or Content; hash and size are computed
// from it. Alternatively Hash and Size may be given explicitly with no
// content, registering the record without uploading (the upload can be
// resumed later by re-running with content).
type CreateBinaryRequest struct {
	ArtifactVersionPRN string
	Target             string

	// Content source, one of:
	ContentPath string
	Content     []byte

	// Explicit identity when no content is provided.
	Hash string
	Size uint64

	ID             string
	Description    string
	CustomMetadata map[string]any

	// Signatures to apply once the binary reaches Signable.
	Signatures []pipeline.SignatureConfig
}

// CreateBinary ensures the binary record exists and drives it through
// the pipeline: upload, server-side hashing, and signing. Validation
// happens before any network call.
func (c *Client) CreateBinary(ctx context.Context, req CreateBinaryRequest) (*registry.Binary, error) {
	content := req.Content
	if req.ContentPath != "" {
		data, err := os.ReadFile(req.ContentPath)
		if err != nil {
			return nil, fmt.Errorf("read content: %w", err)
		}
		content = data
	}

	hash, size := req.Hash, req.Size
	switch {
	case content != nil:
		if len(content) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyContent, req.Target)
		}
		hash = digest.FromBytes(content).Encoded()
		size = uint64(len(content))
	case hash == "" || size == 0:
		return nil, ErrNoContent
	}

	binary, err := c.EnsureBinary(ctx, BinarySpec{
		ArtifactVersionPRN: req.ArtifactVersionPRN,
		Target:             req.Target,
		Hash:               hash,
		Size:               size,
		ID:                 req.ID,
		Description:        req.Description,
		CustomMetadata:     req.CustomMetadata,
	})
	if err != nil {
		return nil, err
	}

	if content == nil && binary.State == registry.BinaryStateUploadable {
		// Record registered; bytes arrive on a later run.
		return binary, nil
	}
	return c.newProcessor(req.Signatures).Process(ctx, binary, content)
}
