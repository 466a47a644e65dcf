// Package hoist ingests binary artifacts into a registry and moves
// whole releases around as bundle archives.
//
// The high-level [Client] drives a binary from raw bytes to a signed,
// registry-resident record: chunked parallel upload, server-side hash
// polling, and multi-key signing. Bundles package a set of signed
// binaries into a single portable archive that Push materializes
// against a registry and Pull reconstructs from one.
//
// Lower-level building blocks live in subpackages: registry (REST
// client), pipeline (upload, sign, and lifecycle orchestration), bundle
// (archive codec), and prn (resource names).
//
// # Quick Start
//
// Ingest and sign one binary:
//
//	c, err := hoist.NewClient(
//	    hoist.WithBaseURL("https://api.example.com"),
//	    hoist.WithAPIKey(key),
//	)
//	if err != nil {
//	    return err
//	}
//	binary, err := c.CreateBinary(ctx, hoist.CreateBinaryRequest{
//	    ArtifactVersionPRN: versionPRN,
//	    Target:             "arm64-linux",
//	    ContentPath:        "firmware.img",
//	    Signatures: []pipeline.SignatureConfig{
//	        pipeline.FromPrivateKey(signingKeyPRN, "release.pem"),
//	    },
//	})
//
// Push a bundle archive:
//
//	bundleRef, err := c.Push(ctx, "release-2.4.0.cpio.zst")
package hoist
