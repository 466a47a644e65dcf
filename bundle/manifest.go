package bundle

import (
	"encoding/json"
	"fmt"
	"io"
)

// ManifestName is the reserved record name of the manifest inside an
// archive.
const ManifestName = "bundle.json"

// Manifest is the archive's self-describing index. It carries the full
// artifact, version, and binary graph so a consumer can reconstruct
// every registry resource without a registry call.
type Manifest struct {
	Artifacts map[string]Artifact `json:"artifacts"`
	Bundle    Info                `json:"bundle"`
}

// Artifact describes one artifact and its versions, keyed by version id.
type Artifact struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Versions    map[string]Version `json:"versions"`
}

// Version describes one artifact version and its binaries, keyed by
// binary id.
type Version struct {
	Version     string                  `json:"version"`
	Description string                  `json:"description,omitempty"`
	Binaries    map[string]BinaryRecord `json:"binaries"`
}

// BinaryRecord carries the per-binary detail that is not in the entry
// list: a description and the detached signatures to replay on push.
type BinaryRecord struct {
	Description string            `json:"description,omitempty"`
	Signatures  []SignatureRecord `json:"signatures"`
}

// SignatureRecord is one detached signature by key id.
type SignatureRecord struct {
	KeyID string `json:"keyid"`
	Sig   string `json:"sig"`
}

// Info identifies the bundle and orders its payload entries.
type Info struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Hash       string            `json:"hash,omitempty"`
	Signatures []SignatureRecord `json:"signatures"`
	Manifest   []Entry           `json:"manifest"`
}

// Entry describes one payload: its identity within the resource graph
// and the hash and size used to verify its bytes.
type Entry struct {
	Hash              string         `json:"hash"`
	Size              uint64         `json:"size"`
	BinaryID          string         `json:"binary_id"`
	Target            string         `json:"target"`
	ArtifactVersionID string         `json:"artifact_version_id"`
	ArtifactID        string         `json:"artifact_id"`
	CustomMetadata    map[string]any `json:"custom_metadata"`
}

// BinaryRecord returns the record for a binary id, searching across all
// artifacts and versions.
func (m *Manifest) BinaryRecord(binaryID string) (BinaryRecord, bool) {
	for _, artifact := range m.Artifacts {
		for _, version := range artifact.Versions {
			if record, ok := version.Binaries[binaryID]; ok {
				return record, true
			}
		}
	}
	return BinaryRecord{}, false
}

// VersionID returns the version id owning a binary id.
func (m *Manifest) VersionID(binaryID string) (string, bool) {
	for _, artifact := range m.Artifacts {
		for versionID, version := range artifact.Versions {
			if _, ok := version.Binaries[binaryID]; ok {
				return versionID, true
			}
		}
	}
	return "", false
}

// EncodeManifest writes the manifest as indented JSON.
func EncodeManifest(w io.Writer, m *Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// DecodeManifest parses a manifest from JSON.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
