package hoist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/quayside/hoist/bundle"
	"github.com/quayside/hoist/prname"
	"github.com/quayside/hoist/registry"
)

// Pull reconstructs a bundle archive from registry state: it fetches
// the bundle and every referenced binary, version, and artifact,
// assembles the manifest, downloads each payload, and writes the
// archive to outputPath. An empty outputPath derives a file name from
// the bundle's name or PRN. The written path is returned.
//
// A binary whose content is not downloadable is replaced by a
// zero-filled placeholder of the declared size, with a warning; the
// archive still round-trips structurally but that payload's hash will
// not verify.
func (c *Client) Pull(ctx context.Context, bundlePRN, outputPath string) (string, error) {
	fetched, err := c.reg.GetBundle(ctx, bundlePRN)
	if err != nil {
		return "", fmt.Errorf("get bundle: %w", err)
	}
	v2, ok := fetched.(*registry.BundleV2)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrBundleSchema, bundlePRN)
	}

	manifest, binaryPRNs, err := c.assembleManifest(ctx, v2)
	if err != nil {
		return "", err
	}

	if outputPath == "" {
		outputPath = archiveFileName(v2)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	if err := c.writeArchive(ctx, f, manifest, binaryPRNs); err != nil {
		os.Remove(outputPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}

	c.log().Info("bundle pulled", "prn", bundlePRN, "path", outputPath)
	return outputPath, nil
}

// assembleManifest walks the bundle's binary references and rebuilds
// the artifact, version, and binary graph as a manifest. It also maps
// each binary id back to its PRN for the download phase.
func (c *Client) assembleManifest(ctx context.Context, v2 *registry.BundleV2) (*bundle.Manifest, map[string]string, error) {
	bundleID, err := prn.ResourceID(v2.PRN)
	if err != nil {
		return nil, nil, fmt.Errorf("parse bundle PRN: %w", err)
	}

	manifest := &bundle.Manifest{
		Artifacts: make(map[string]bundle.Artifact),
		Bundle: bundle.Info{
			ID:         bundleID,
			Name:       v2.Name,
			Hash:       v2.Hash,
			Signatures: []bundle.SignatureRecord{},
		},
	}
	binaryPRNs := make(map[string]string)

	for _, ref := range v2.Binaries {
		binary, err := c.reg.GetBinary(ctx, ref.PRN)
		if err != nil {
			return nil, nil, fmt.Errorf("get binary %s: %w", ref.PRN, err)
		}
		version, err := c.reg.GetArtifactVersion(ctx, binary.ArtifactVersionPRN)
		if err != nil {
			return nil, nil, fmt.Errorf("get artifact version %s: %w", binary.ArtifactVersionPRN, err)
		}
		artifact, err := c.reg.GetArtifact(ctx, version.ArtifactPRN)
		if err != nil {
			return nil, nil, fmt.Errorf("get artifact %s: %w", version.ArtifactPRN, err)
		}

		binaryID, err := prn.ResourceID(binary.PRN)
		if err != nil {
			return nil, nil, fmt.Errorf("parse binary PRN: %w", err)
		}
		versionID, err := prn.ResourceID(version.PRN)
		if err != nil {
			return nil, nil, fmt.Errorf("parse artifact version PRN: %w", err)
		}
		artifactID, err := prn.ResourceID(artifact.PRN)
		if err != nil {
			return nil, nil, fmt.Errorf("parse artifact PRN: %w", err)
		}

		signatures := make([]bundle.SignatureRecord, 0, len(binary.Signatures))
		for _, sig := range binary.Signatures {
			signatures = append(signatures, bundle.SignatureRecord{KeyID: sig.KeyID, Sig: sig.Signature})
		}

		art, ok := manifest.Artifacts[artifactID]
		if !ok {
			art = bundle.Artifact{
				Name:        artifact.Name,
				Description: artifact.Description,
				Versions:    make(map[string]bundle.Version),
			}
		}
		ver, ok := art.Versions[versionID]
		if !ok {
			ver = bundle.Version{
				Version:     version.Version,
				Description: version.Description,
				Binaries:    make(map[string]bundle.BinaryRecord),
			}
		}
		ver.Binaries[binaryID] = bundle.BinaryRecord{
			Description: binary.Description,
			Signatures:  signatures,
		}
		art.Versions[versionID] = ver
		manifest.Artifacts[artifactID] = art

		metadata := ref.CustomMetadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		manifest.Bundle.Manifest = append(manifest.Bundle.Manifest, bundle.Entry{
			Hash:              binary.Hash,
			Size:              binary.Size,
			BinaryID:          binaryID,
			Target:            binary.Target,
			ArtifactVersionID: versionID,
			ArtifactID:        artifactID,
			CustomMetadata:    metadata,
		})
		binaryPRNs[binaryID] = binary.PRN
	}

	return manifest, binaryPRNs, nil
}

// writeArchive streams the manifest and each payload, in manifest
// order, into w.
func (c *Client) writeArchive(ctx context.Context, w io.Writer, manifest *bundle.Manifest, binaryPRNs map[string]string) error {
	bw, err := bundle.NewWriter(w, manifest)
	if err != nil {
		return err
	}

	for _, entry := range manifest.Bundle.Manifest {
		content, err := c.fetchPayload(ctx, binaryPRNs[entry.BinaryID], entry)
		if err != nil {
			return err
		}
		if err := bw.AddPayload(entry.Target, content); err != nil {
			return err
		}
		c.log().Debug("payload added", "target", entry.Target, "size", len(content))
	}
	return bw.Close()
}

// fetchPayload downloads one binary's content and verifies it against
// the manifest entry. A missing download falls back to a zero-filled
// placeholder.
func (c *Client) fetchPayload(ctx context.Context, binaryPRN string, entry bundle.Entry) ([]byte, error) {
	body, err := c.reg.DownloadBinary(ctx, binaryPRN)
	if errors.Is(err, registry.ErrNotFound) {
		c.log().Warn("binary content unavailable, writing placeholder",
			"binary_id", entry.BinaryID,
			"target", entry.Target,
			"size", entry.Size,
		)
		return make([]byte, entry.Size), nil
	}
	if err != nil {
		return nil, fmt.Errorf("download binary %s: %w", entry.BinaryID, err)
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read binary %s: %w", entry.BinaryID, err)
	}
	if uint64(len(content)) != entry.Size {
		return nil, fmt.Errorf("binary %s: size mismatch, want %d, got %d", entry.BinaryID, entry.Size, len(content))
	}
	if got := digest.FromBytes(content).Encoded(); got != entry.Hash {
		return nil, fmt.Errorf("binary %s: hash mismatch, want %s, got %s", entry.BinaryID, entry.Hash, got)
	}
	return content, nil
}

// archiveFileName derives a safe default archive name from the bundle's
// display name or PRN.
func archiveFileName(b registry.Bundle) string {
	name := b.BundleName()
	if name == "" {
		name = b.ResourceName()
	}
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return sanitized + ".cpio.zst"
}
