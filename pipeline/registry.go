package pipeline

import (
	"context"

	"github.com/quayside/hoist/registry"
)

// RegistryAPI is the slice of the registry client the pipeline needs.
//
// *registry.Client satisfies it. Tests use hand-written fakes.
type RegistryAPI interface {
	// GetBinary fetches a binary by PRN.
	GetBinary(ctx context.Context, binaryPRN string) (*registry.Binary, error)

	// UpdateBinary patches a binary record.
	UpdateBinary(ctx context.Context, binaryPRN string, params registry.UpdateBinaryParams) (*registry.Binary, error)

	// ListBinaryParts lists the parts already registered for a binary.
	ListBinaryParts(ctx context.Context, binaryPRN string, params registry.ListParams) ([]registry.BinaryPart, string, error)

	// CreateBinaryPart registers a part and returns its upload target.
	CreateBinaryPart(ctx context.Context, binaryPRN string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error)

	// CreateSignature attaches a signature to a binary.
	CreateSignature(ctx context.Context, params registry.CreateSignatureParams) (*registry.Signature, error)

	// ListSignatures lists the signatures attached to a binary.
	ListSignatures(ctx context.Context, binaryPRN string) ([]registry.Signature, error)
}
