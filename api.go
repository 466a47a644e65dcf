package hoist

import (
	"context"
	"io"

	"github.com/quayside/hoist/registry"
)

// Registry is the slice of the registry client the high-level Client
// needs. *registry.Client satisfies it; tests use hand-written fakes.
type Registry interface {
	// APIVersion reports the configured registry API version, which
	// selects the bundle schema.
	APIVersion() int

	// Me returns the authenticated identity.
	Me(ctx context.Context) (*registry.User, error)

	// Artifacts.
	CreateArtifact(ctx context.Context, params registry.CreateArtifactParams) (*registry.Artifact, error)
	GetArtifact(ctx context.Context, artifactPRN string) (*registry.Artifact, error)
	ListArtifacts(ctx context.Context, params registry.ListParams) ([]registry.Artifact, string, error)
	DeleteArtifact(ctx context.Context, artifactPRN string) error

	// Artifact versions.
	CreateArtifactVersion(ctx context.Context, params registry.CreateArtifactVersionParams) (*registry.ArtifactVersion, error)
	GetArtifactVersion(ctx context.Context, versionPRN string) (*registry.ArtifactVersion, error)
	ListArtifactVersions(ctx context.Context, params registry.ListParams) ([]registry.ArtifactVersion, string, error)
	DeleteArtifactVersion(ctx context.Context, versionPRN string) error

	// Binaries.
	CreateBinary(ctx context.Context, params registry.CreateBinaryParams) (*registry.Binary, error)
	GetBinary(ctx context.Context, binaryPRN string) (*registry.Binary, error)
	UpdateBinary(ctx context.Context, binaryPRN string, params registry.UpdateBinaryParams) (*registry.Binary, error)
	ListBinaries(ctx context.Context, params registry.ListParams) ([]registry.Binary, string, error)
	DownloadBinary(ctx context.Context, binaryPRN string) (io.ReadCloser, error)

	// Binary parts.
	CreateBinaryPart(ctx context.Context, binaryPRN string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error)
	ListBinaryParts(ctx context.Context, binaryPRN string, params registry.ListParams) ([]registry.BinaryPart, string, error)

	// Signatures.
	CreateSignature(ctx context.Context, params registry.CreateSignatureParams) (*registry.Signature, error)
	ListSignatures(ctx context.Context, binaryPRN string) ([]registry.Signature, error)

	// Bundles.
	CreateBundleV1(ctx context.Context, params registry.CreateBundleParamsV1) (registry.Bundle, error)
	CreateBundleV2(ctx context.Context, params registry.CreateBundleParamsV2) (registry.Bundle, error)
	GetBundle(ctx context.Context, bundlePRN string) (registry.Bundle, error)
	DeleteBundle(ctx context.Context, bundlePRN string) error
}
