package hoist

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/quayside/hoist/bundle"
	"github.com/quayside/hoist/pipeline"
	"github.com/quayside/hoist/prname"
	"github.com/quayside/hoist/registry"
)

// Push materializes a bundle archive against the registry: it ensures
// every artifact, version, and binary the manifest names, processes
// each binary through upload and signing, and creates the bundle.
//
// Artifact and version failures are logged and skip that subtree;
// binary and bundle failures abort the push. A release must not be
// declared with missing binaries.
func (c *Client) Push(ctx context.Context, archivePath string) (registry.Bundle, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	archive, err := bundle.Parse(f)
	if err != nil {
		return nil, err
	}
	manifest := archive.Manifest
	c.log().Info("pushing bundle",
		"id", manifest.Bundle.ID,
		"artifacts", len(manifest.Artifacts),
		"binaries", len(manifest.Bundle.Manifest),
	)

	var matchOpts []bundle.MatchOption
	if c.lenientMatch {
		matchOpts = append(matchOpts, bundle.WithLenientMatch())
	}
	if c.logger != nil {
		matchOpts = append(matchOpts, bundle.WithMatchLogger(c.logger))
	}
	payloads, err := bundle.MatchPayloads(manifest, archive.Payloads, matchOpts...)
	if err != nil {
		return nil, err
	}

	user, err := c.reg.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("look up identity: %w", err)
	}
	builder, err := prn.FromPRN(user.OrganizationPRN)
	if err != nil {
		return nil, fmt.Errorf("parse organization PRN: %w", err)
	}

	versionPRNs := c.ensureGraph(ctx, builder, manifest)

	binaries, err := c.pushBinaries(ctx, manifest, versionPRNs, payloads)
	if err != nil {
		return nil, err
	}

	return c.createBundle(ctx, manifest, versionPRNs, binaries)
}

// ensureGraph resolves every artifact and version in the manifest,
// best-effort, and maps each binary id to its version PRN. A failed
// artifact or version is logged and its binaries are skipped.
func (c *Client) ensureGraph(ctx context.Context, builder *prn.Builder, manifest *bundle.Manifest) map[string]string {
	versionPRNs := make(map[string]string)

	for artifactID, artifact := range manifest.Artifacts {
		artifactPRN, err := c.ensureArtifact(ctx, builder, artifactID, artifact)
		if err != nil {
			c.log().Warn("skipping artifact", "name", artifact.Name, "error", err)
			continue
		}
		for versionID, version := range artifact.Versions {
			versionPRN, err := c.ensureArtifactVersion(ctx, builder, artifactPRN, versionID, version)
			if err != nil {
				c.log().Warn("skipping artifact version", "version", version.Version, "error", err)
				continue
			}
			for binaryID := range version.Binaries {
				versionPRNs[binaryID] = versionPRN
			}
		}
	}
	return versionPRNs
}

// pushBinaries ensures and processes every manifest entry's binary, in
// manifest order, and returns the bundle's binary references. Any
// binary failure is fatal.
func (c *Client) pushBinaries(ctx context.Context, manifest *bundle.Manifest, versionPRNs map[string]string, payloads map[string][]byte) ([]registry.BundleBinary, error) {
	binaries := make([]registry.BundleBinary, 0, len(manifest.Bundle.Manifest))

	for _, entry := range manifest.Bundle.Manifest {
		versionPRN, ok := versionPRNs[entry.BinaryID]
		if !ok {
			c.log().Warn("no artifact version for binary, skipping", "binary_id", entry.BinaryID)
			continue
		}

		record, _ := manifest.BinaryRecord(entry.BinaryID)
		binary, err := c.EnsureBinary(ctx, BinarySpec{
			ArtifactVersionPRN: versionPRN,
			Target:             entry.Target,
			Hash:               entry.Hash,
			Size:               entry.Size,
			ID:                 entry.BinaryID,
			Description:        record.Description,
			CustomMetadata:     entry.CustomMetadata,
		})
		if err != nil {
			return nil, err
		}

		signatures := make([]pipeline.SignatureConfig, 0, len(record.Signatures))
		for _, sig := range record.Signatures {
			signatures = append(signatures, pipeline.PreComputed(sig.KeyID, sig.Sig))
		}

		processed, err := c.newProcessor(signatures).Process(ctx, binary, payloads[entry.BinaryID])
		if err != nil {
			return nil, fmt.Errorf("process binary %s: %w", entry.BinaryID, err)
		}
		c.log().Info("binary pushed", "prn", processed.PRN, "state", processed.State)

		binaries = append(binaries, registry.BundleBinary{
			PRN:            processed.PRN,
			CustomMetadata: entry.CustomMetadata,
		})
	}
	return binaries, nil
}

// createBundle creates the bundle record using the schema the
// configured API version dictates.
func (c *Client) createBundle(ctx context.Context, manifest *bundle.Manifest, versionPRNs map[string]string, binaries []registry.BundleBinary) (registry.Bundle, error) {
	var (
		created registry.Bundle
		err     error
	)
	if c.reg.APIVersion() == 1 {
		// Legacy schema references artifact versions, deduplicated in
		// manifest order.
		var versions []string
		for _, entry := range manifest.Bundle.Manifest {
			if versionPRN, ok := versionPRNs[entry.BinaryID]; ok && !slices.Contains(versions, versionPRN) {
				versions = append(versions, versionPRN)
			}
		}
		created, err = c.reg.CreateBundleV1(ctx, registry.CreateBundleParamsV1{
			ArtifactVersionPRNs: versions,
			ID:                  manifest.Bundle.ID,
			Name:                manifest.Bundle.Name,
		})
	} else {
		created, err = c.reg.CreateBundleV2(ctx, registry.CreateBundleParamsV2{
			Binaries: binaries,
			ID:       manifest.Bundle.ID,
			Name:     manifest.Bundle.Name,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("create bundle: %w", err)
	}
	c.log().Info("bundle pushed", "prn", created.ResourceName())
	return created, nil
}
