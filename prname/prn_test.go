package prn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOrgID     = "550e8400-e29b-41d4-a716-446655440000"
	testBinaryID  = "550e8400-e29b-41d4-a716-446655440001"
	testVersionID = "550e8400-e29b-41d4-a716-446655440002"
)

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := Parse("prn:1:" + testOrgID + ":binary:" + testBinaryID)
	require.NoError(t, err)

	assert.Equal(t, "1", p.Version)
	assert.Equal(t, testOrgID, p.OrganizationID)
	assert.Equal(t, "binary", p.ResourceType)
	assert.Equal(t, testBinaryID, p.ResourceID)
	assert.Equal(t, "prn:1:"+testOrgID+":binary:"+testBinaryID, p.String())
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"too few parts", "invalid:prn", ErrInvalidFormat},
		{"bad prefix", "invalid:1:" + testOrgID + ":binary:" + testBinaryID, ErrInvalidPrefix},
		{"bad version", "prn:2:" + testOrgID + ":binary:" + testBinaryID, ErrUnsupportedVersion},
		{"bad org id", "prn:1:invalid-uuid:binary:" + testBinaryID, ErrInvalidOrganizationID},
		{"bad resource id", "prn:1:" + testOrgID + ":binary:nope", ErrInvalidResourceID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseOrganizationID(t *testing.T) {
	t.Parallel()

	orgID, err := ParseOrganizationID("prn:1:" + testOrgID)
	require.NoError(t, err)
	assert.Equal(t, testOrgID, orgID)

	_, err = ParseOrganizationID("prn:1:invalid-uuid")
	assert.ErrorIs(t, err, ErrInvalidOrganizationID)

	_, err = ParseOrganizationID("invalid:format")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	b := NewBuilder(testOrgID)

	binary, err := b.Binary(testBinaryID)
	require.NoError(t, err)
	assert.Equal(t, "prn:1:"+testOrgID+":binary:"+testBinaryID, binary)

	version, err := b.ArtifactVersion(testVersionID)
	require.NoError(t, err)
	assert.Equal(t, "prn:1:"+testOrgID+":artifact_version:"+testVersionID, version)

	artifact, err := b.Artifact(testBinaryID)
	require.NoError(t, err)
	assert.Equal(t, "prn:1:"+testOrgID+":artifact:"+testBinaryID, artifact)

	bundle, err := b.Bundle(testBinaryID)
	require.NoError(t, err)
	assert.Equal(t, "prn:1:"+testOrgID+":bundle:"+testBinaryID, bundle)
}

func TestBuilder_FromPRN(t *testing.T) {
	t.Parallel()

	// From a five-part resource PRN.
	b, err := FromPRN("prn:1:" + testOrgID + ":artifact_version:" + testVersionID)
	require.NoError(t, err)
	got, err := b.Binary(testBinaryID)
	require.NoError(t, err)
	assert.Equal(t, "prn:1:"+testOrgID+":binary:"+testBinaryID, got)

	// From a three-part organization PRN.
	b, err = FromPRN("prn:1:" + testOrgID)
	require.NoError(t, err)
	got, err = b.Binary(testBinaryID)
	require.NoError(t, err)
	assert.Equal(t, "prn:1:"+testOrgID+":binary:"+testBinaryID, got)

	_, err = FromPRN("prn:1")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestBuilder_InvalidIDs(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder("invalid-uuid").Binary(testBinaryID)
	assert.ErrorIs(t, err, ErrInvalidOrganizationID)

	_, err = NewBuilder(testOrgID).Binary("invalid-resource-id")
	assert.ErrorIs(t, err, ErrInvalidResourceID)
}
