package pipeline

import (
	"context"

	"github.com/quayside/hoist/registry"
)

// mockRegistry is a test double for RegistryAPI. Unset funcs return
// zero values.
type mockRegistry struct {
	GetBinaryFunc        func(ctx context.Context, binaryPRN string) (*registry.Binary, error)
	UpdateBinaryFunc     func(ctx context.Context, binaryPRN string, params registry.UpdateBinaryParams) (*registry.Binary, error)
	ListBinaryPartsFunc  func(ctx context.Context, binaryPRN string, params registry.ListParams) ([]registry.BinaryPart, string, error)
	CreateBinaryPartFunc func(ctx context.Context, binaryPRN string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error)
	CreateSignatureFunc  func(ctx context.Context, params registry.CreateSignatureParams) (*registry.Signature, error)
	ListSignaturesFunc   func(ctx context.Context, binaryPRN string) ([]registry.Signature, error)
}

func (m *mockRegistry) GetBinary(ctx context.Context, binaryPRN string) (*registry.Binary, error) {
	if m.GetBinaryFunc == nil {
		return nil, nil
	}
	return m.GetBinaryFunc(ctx, binaryPRN)
}

func (m *mockRegistry) UpdateBinary(ctx context.Context, binaryPRN string, params registry.UpdateBinaryParams) (*registry.Binary, error) {
	if m.UpdateBinaryFunc == nil {
		return nil, nil
	}
	return m.UpdateBinaryFunc(ctx, binaryPRN, params)
}

func (m *mockRegistry) ListBinaryParts(ctx context.Context, binaryPRN string, params registry.ListParams) ([]registry.BinaryPart, string, error) {
	if m.ListBinaryPartsFunc == nil {
		return nil, "", nil
	}
	return m.ListBinaryPartsFunc(ctx, binaryPRN, params)
}

func (m *mockRegistry) CreateBinaryPart(ctx context.Context, binaryPRN string, params registry.CreateBinaryPartParams) (*registry.BinaryPart, error) {
	if m.CreateBinaryPartFunc == nil {
		return nil, nil
	}
	return m.CreateBinaryPartFunc(ctx, binaryPRN, params)
}

func (m *mockRegistry) CreateSignature(ctx context.Context, params registry.CreateSignatureParams) (*registry.Signature, error) {
	if m.CreateSignatureFunc == nil {
		return nil, nil
	}
	return m.CreateSignatureFunc(ctx, params)
}

func (m *mockRegistry) ListSignatures(ctx context.Context, binaryPRN string) ([]registry.Signature, error) {
	if m.ListSignaturesFunc == nil {
		return nil, nil
	}
	return m.ListSignaturesFunc(ctx, binaryPRN)
}
