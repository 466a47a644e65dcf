package hoist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/quayside/hoist/registry"
)

const testOrgID = "b5510900-a2a0-49ce-9a34-6e7eb729cf82"

// fakeRegistry is an in-memory Registry. Server-side hashing resolves
// instantly: reading a binary in the Hashing state flips it to
// Signable.
type fakeRegistry struct {
	mu sync.Mutex

	apiVersion int
	orgPRN     string

	artifacts  map[string]*registry.Artifact
	versions   map[string]*registry.ArtifactVersion
	binaries   map[string]*registry.Binary
	signatures map[string][]registry.Signature
	bundles    map[string]registry.Bundle
	content    map[string][]byte // downloadable payload per binary PRN

	transferURL string

	createBinaryCalls  int
	createBundleParams any
}

func newFakeRegistry(t *testing.T) *fakeRegistry {
	t.Helper()

	f := &fakeRegistry{
		apiVersion: registry.DefaultAPIVersion,
		orgPRN:     "prn:1:" + testOrgID,
		artifacts:  make(map[string]*registry.Artifact),
		versions:   make(map[string]*registry.ArtifactVersion),
		binaries:   make(map[string]*registry.Binary),
		signatures: make(map[string][]registry.Signature),
		bundles:    make(map[string]registry.Bundle),
		content:    make(map[string][]byte),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	f.transferURL = srv.URL
	return f
}

func (f *fakeRegistry) APIVersion() int { return f.apiVersion }

func (f *fakeRegistry) Me(context.Context) (*registry.User, error) {
	return &registry.User{PRN: "prn:1:" + testOrgID + ":user:" + uuid.NewString(), OrganizationPRN: f.orgPRN}, nil
}

func (f *fakeRegistry) CreateArtifact(_ context.Context, params registry.CreateArtifactParams) (*registry.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	a := &registry.Artifact{
		PRN:         fmt.Sprintf("prn:1:%s:artifact:%s", testOrgID, id),
		Name:        params.Name,
		Description: params.Description,
	}
	f.artifacts[a.PRN] = a
	return a, nil
}

func (f *fakeRegistry) GetArtifact(_ context.Context, artifactPRN string) (*registry.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.artifacts[artifactPRN]; ok {
		return a, nil
	}
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) ListArtifacts(context.Context, registry.ListParams) ([]registry.Artifact, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []registry.Artifact
	for _, a := range f.artifacts {
		out = append(out, *a)
	}
	return out, "", nil
}

func (f *fakeRegistry) DeleteArtifact(_ context.Context, artifactPRN string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.artifacts, artifactPRN)
	return nil
}

func (f *fakeRegistry) CreateArtifactVersion(_ context.Context, params registry.CreateArtifactVersionParams) (*registry.ArtifactVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	v := &registry.ArtifactVersion{
		PRN:         fmt.Sprintf("prn:1:%s:artifact_version:%s", testOrgID, id),
		ArtifactPRN: params.ArtifactPRN,
		Version:     params.Version,
		Description: params.Description,
	}
	f.versions[v.PRN] = v
	return v, nil
}

func (f *fakeRegistry) GetArtifactVersion(_ context.Context, versionPRN string) (*registry.ArtifactVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.versions[versionPRN]; ok {
		return v, nil
	}
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) ListArtifactVersions(context.Context, registry.ListParams) ([]registry.ArtifactVersion, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []registry.ArtifactVersion
	for _, v := range f.versions {
		out = append(out, *v)
	}
	return out, "", nil
}

func (f *fakeRegistry) DeleteArtifactVersion(_ context.Context, versionPRN string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.versions, versionPRN)
	return nil
}

func (f *fakeRegistry) CreateBinary(_ context.Context, params registry.CreateBinaryParams) (*registry.Binary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createBinaryCalls++
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	b := &registry.Binary{
		PRN:                fmt.Sprintf("prn:1:%s:binary:%s", testOrgID, id),
		ArtifactVersionPRN: params.ArtifactVersionPRN,
		Target:             params.Target,
		State:              registry.BinaryStateUploadable,
		Hash:               params.Hash,
		Size:               params.Size,
		Description:        params.Description,
		CustomMetadata:     params.CustomMetadata,
	}
	f.binaries[b.PRN] = b
	return b, nil
}

func (f *fakeRegistry) GetBinary(_ context.Context, binaryPRN string) (*registry.Binary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.binaries[binaryPRN]
	if !ok {
		return nil, registry.ErrNotFound
	}
	if b.State == registry.BinaryStateHashing {
		b.State = registry.BinaryStateSignable
	}
	copied := *b
	copied.Signatures = f.signatures[binaryPRN]
	return &copied, nil
}

func (f *fakeRegistry) UpdateBinary(_ context.Context, binaryPRN string, params registry.UpdateBinaryParams) (*registry.Binary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.binaries[binaryPRN]
	if !ok {
		return nil, registry.ErrNotFound
	}
	if params.State != nil {
		b.State = *params.State
	}
	if params.Hash != nil {
		b.Hash = *params.Hash
	}
	if params.Size != nil {
		b.Size = *params.Size
	}
	copied := *b
	return &copied, nil
}

func (f *fakeRegistry) ListBinaries(_ context.Context, params registry.ListParams) ([]registry.Binary, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []registry.Binary
	for _, b := range f.binaries {
		search := fmt.Sprintf("artifact_version_prn:'%s' and target:'%s'", b.ArtifactVersionPRN, b.Target)
		if params.Search == search {
			out = append(out, *b)
		}
	}
	return out, "", nil
}

func (f *fakeRegistry) DownloadBinary(_ context.Context, binaryPRN string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.content[binaryPRN]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeRegistry) CreateBinaryPart(_ context.Context, binaryPRN string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error) {
	return &registry.BinaryPart{
		Index:              params.Index,
		Size:               params.Size,
		Hash:               params.Hash,
		State:              registry.PartStatePending,
		PresignedUploadURL: fmt.Sprintf("%s/%s/%d", f.transferURL, binaryPRN, params.Index),
	}, nil
}

func (f *fakeRegistry) ListBinaryParts(context.Context, string, registry.ListParams) ([]registry.BinaryPart, string, error) {
	return nil, "", nil
}

func (f *fakeRegistry) CreateSignature(_ context.Context, params registry.CreateSignatureParams) (*registry.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keyID := params.SigningKeyKeyID
	if keyID == "" {
		keyID = params.SigningKeyPRN
	}
	sig := registry.Signature{
		PRN:       fmt.Sprintf("prn:1:%s:signature:%s", testOrgID, uuid.NewString()),
		BinaryPRN: params.BinaryPRN,
		KeyID:     keyID,
		Signature: params.Signature,
	}
	f.signatures[params.BinaryPRN] = append(f.signatures[params.BinaryPRN], sig)
	return &sig, nil
}

func (f *fakeRegistry) ListSignatures(_ context.Context, binaryPRN string) ([]registry.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signatures[binaryPRN], nil
}

func (f *fakeRegistry) CreateBundleV1(_ context.Context, params registry.CreateBundleParamsV1) (registry.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createBundleParams = params
	b := &registry.BundleV1{
		PRN:                 fmt.Sprintf("prn:1:%s:bundle:%s", testOrgID, uuid.NewString()),
		Name:                params.Name,
		ArtifactVersionPRNs: params.ArtifactVersionPRNs,
	}
	f.bundles[b.PRN] = b
	return b, nil
}

func (f *fakeRegistry) CreateBundleV2(_ context.Context, params registry.CreateBundleParamsV2) (registry.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createBundleParams = params
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	b := &registry.BundleV2{
		PRN:      fmt.Sprintf("prn:1:%s:bundle:%s", testOrgID, id),
		Name:     params.Name,
		Binaries: params.Binaries,
	}
	f.bundles[b.PRN] = b
	return b, nil
}

func (f *fakeRegistry) GetBundle(_ context.Context, bundlePRN string) (registry.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bundles[bundlePRN]; ok {
		return b, nil
	}
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) DeleteBundle(_ context.Context, bundlePRN string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bundles, bundlePRN)
	return nil
}
