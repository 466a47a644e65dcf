package hoist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/hoist/registry"
)

func newTestClient(t *testing.T, reg Registry) *Client {
	t.Helper()
	c, err := NewClient(
		WithRegistry(reg),
		WithPollPolicy(time.Millisecond, 5),
	)
	require.NoError(t, err)
	return c
}

func testVersionPRN() string {
	return fmt.Sprintf("prn:1:%s:artifact_version:%s", testOrgID, uuid.NewString())
}

func TestNewClient_RequiresRegistry(t *testing.T) {
	t.Parallel()

	_, err := NewClient()
	assert.ErrorIs(t, err, ErrNoRegistry)
}

func TestEnsureBinary_CreatesThenReturnsExisting(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry(t)
	c := newTestClient(t, reg)

	spec := BinarySpec{
		ArtifactVersionPRN: testVersionPRN(),
		Target:             "arm64-linux",
		Hash:               "aa11",
		Size:               42,
	}

	first, err := c.EnsureBinary(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, registry.BinaryStateUploadable, first.State)
	assert.Equal(t, 1, reg.createBinaryCalls)

	second, err := c.EnsureBinary(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, first.PRN, second.PRN)
	assert.Equal(t, 1, reg.createBinaryCalls, "identical re-run must not create")
}

func TestEnsureBinary_SignedMismatchIsImmutable(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry(t)
	c := newTestClient(t, reg)

	spec := BinarySpec{
		ArtifactVersionPRN: testVersionPRN(),
		Target:             "arm64-linux",
		Hash:               "aa11",
		Size:               42,
	}
	existing, err := c.EnsureBinary(context.Background(), spec)
	require.NoError(t, err)

	signed := registry.BinaryStateSigned
	_, err = reg.UpdateBinary(context.Background(), existing.PRN, registry.UpdateBinaryParams{State: &signed})
	require.NoError(t, err)

	spec.Hash = "bb22"
	_, err = c.EnsureBinary(context.Background(), spec)
	require.ErrorIs(t, err, ErrSignedImmutable)
	assert.Contains(t, err.Error(), spec.Target)

	// No mutation happened.
	stored, err := reg.GetBinary(context.Background(), existing.PRN)
	require.NoError(t, err)
	assert.Equal(t, registry.BinaryStateSigned, stored.State)
	assert.Equal(t, "aa11", stored.Hash)
}

func TestEnsureBinary_MismatchResetsToUploadable(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry(t)
	c := newTestClient(t, reg)

	spec := BinarySpec{
		ArtifactVersionPRN: testVersionPRN(),
		Target:             "arm64-linux",
		Hash:               "aa11",
		Size:               42,
	}
	existing, err := c.EnsureBinary(context.Background(), spec)
	require.NoError(t, err)

	signable := registry.BinaryStateSignable
	_, err = reg.UpdateBinary(context.Background(), existing.PRN, registry.UpdateBinaryParams{State: &signable})
	require.NoError(t, err)

	spec.Hash = "bb22"
	spec.Size = 64
	reset, err := c.EnsureBinary(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, existing.PRN, reset.PRN)
	assert.Equal(t, registry.BinaryStateUploadable, reset.State)
	assert.Equal(t, "bb22", reset.Hash)
	assert.Equal(t, uint64(64), reset.Size)
	assert.Equal(t, 1, reg.createBinaryCalls, "reset reuses the record")
}

func TestEnsureBinary_AmbiguousMatch(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry(t)
	c := newTestClient(t, reg)

	versionPRN := testVersionPRN()
	for range 2 {
		_, err := reg.CreateBinary(context.Background(), registry.CreateBinaryParams{
			ArtifactVersionPRN: versionPRN,
			Target:             "arm64-linux",
			Hash:               "aa11",
			Size:               42,
		})
		require.NoError(t, err)
	}

	_, err := c.EnsureBinary(context.Background(), BinarySpec{
		ArtifactVersionPRN: versionPRN,
		Target:             "arm64-linux",
		Hash:               "aa11",
		Size:               42,
	})
	assert.ErrorIs(t, err, ErrAmbiguousBinary)
}
