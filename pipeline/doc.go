// Package pipeline drives a binary artifact from raw bytes to a signed,
// registry-resident record.
//
// The Processor owns the lifecycle state machine (Uploadable → Hashable →
// Hashing → Signable → Signed), delegating chunked content transfer to the
// Uploader and signature resolution to the Signer. All registry access goes
// through the narrow RegistryAPI interface so tests can substitute fakes.
package pipeline
