package bundle

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/cavaliergopher/cpio"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testManifest builds a manifest with one entry per payload, hashed
// from the payload bytes, targets named target-1..N.
func testManifest(t *testing.T, payloads ...[]byte) *Manifest {
	t.Helper()

	m := &Manifest{
		Artifacts: map[string]Artifact{
			"art-1": {
				Name: "radio-firmware",
				Versions: map[string]Version{
					"ver-1": {
						Version:  "2.4.0",
						Binaries: map[string]BinaryRecord{},
					},
				},
			},
		},
		Bundle: Info{
			ID:   "bun-1",
			Name: "release-2.4.0",
		},
	}

	for i, payload := range payloads {
		binaryID := string(rune('a'+i)) + "-binary"
		target := "target-" + string(rune('1'+i))
		m.Artifacts["art-1"].Versions["ver-1"].Binaries[binaryID] = BinaryRecord{
			Signatures: []SignatureRecord{{KeyID: "release-key", Sig: "AABB"}},
		}
		m.Bundle.Manifest = append(m.Bundle.Manifest, Entry{
			Hash:              digest.FromBytes(payload).Encoded(),
			Size:              uint64(len(payload)),
			BinaryID:          binaryID,
			Target:            target,
			ArtifactVersionID: "ver-1",
			ArtifactID:        "art-1",
			CustomMetadata:    map[string]any{"slot": "A"},
		})
	}
	return m
}

func randomPayload(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	return data
}

func TestArchive_RoundTrip(t *testing.T) {
	t.Parallel()

	payloads := [][]byte{
		randomPayload(t, 4096),
		randomPayload(t, 1),
		randomPayload(t, 100_000),
	}
	m := testManifest(t, payloads...)

	var buf bytes.Buffer
	require.NoError(t, Build(&buf, m, payloads))

	archive, err := Parse(&buf)
	require.NoError(t, err)

	require.NotNil(t, archive.Manifest)
	assert.Equal(t, m.Bundle.ID, archive.Manifest.Bundle.ID)
	assert.Equal(t, m.Bundle.Manifest, archive.Manifest.Bundle.Manifest)
	assert.Equal(t, m.Artifacts, archive.Manifest.Artifacts)

	require.Len(t, archive.Payloads, len(payloads))
	for i, p := range archive.Payloads {
		assert.Equal(t, m.Bundle.Manifest[i].Target, p.Name, "payloads keep manifest order")
		assert.Equal(t, payloads[i], p.Data)
	}
}

func TestBuild_PayloadCountMismatch(t *testing.T) {
	t.Parallel()

	m := testManifest(t, []byte("one"), []byte("two"))
	var buf bytes.Buffer
	err := Build(&buf, m, [][]byte{[]byte("one")})
	assert.Error(t, err)
}

func TestParse_NoManifest(t *testing.T) {
	t.Parallel()

	// A stream holding only a payload record, no bundle.json.
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	cw := cpio.NewWriter(zw)
	require.NoError(t, cw.WriteHeader(&cpio.Header{Name: "stray", Mode: 0o644, Size: 4}))
	_, err = cw.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, cw.Close())
	require.NoError(t, zw.Close())

	_, err = Parse(&buf)
	assert.ErrorIs(t, err, ErrNoManifest)
}

func TestParse_NotAnArchive(t *testing.T) {
	t.Parallel()

	_, err := Parse(bytes.NewReader([]byte("not an archive")))
	assert.Error(t, err)
}

func TestWriter_AddPayloadAfterClose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, testManifest(t))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.AddPayload("late", []byte("x")), ErrWriterClosed)
	assert.NoError(t, w.Close(), "double close is a no-op")
}

func TestManifest_Lookups(t *testing.T) {
	t.Parallel()

	m := testManifest(t, []byte("payload"))

	record, ok := m.BinaryRecord("a-binary")
	require.True(t, ok)
	assert.Equal(t, "release-key", record.Signatures[0].KeyID)

	versionID, ok := m.VersionID("a-binary")
	require.True(t, ok)
	assert.Equal(t, "ver-1", versionID)

	_, ok = m.BinaryRecord("absent")
	assert.False(t, ok)
	_, ok = m.VersionID("absent")
	assert.False(t, ok)
}
