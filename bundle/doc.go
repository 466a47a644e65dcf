// Package bundle implements the portable archive format used to move a
// release between registries as a single file.
//
// An archive is a zstd-compressed cpio (newc) stream. The first record
// is the JSON manifest, named bundle.json, describing the artifact,
// version, and binary graph plus an ordered list of payload entries.
// Each following record is one binary payload, named by its target and
// appearing in manifest order. A trailer record terminates the stream.
//
// Payloads are matched back to manifest entries by content hash.
// MatchPayloads optionally falls back to name-based matching for
// archives produced by older tooling.
package bundle
