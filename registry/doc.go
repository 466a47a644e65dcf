// Package registry implements the REST client for the artifact registry.
//
// Each resource (artifact, artifact version, binary, binary part, binary
// signature, bundle) gets create/get/update/list calls returning typed
// records identified by resource names (PRNs). The transport retries
// rate-limited calls and maps registry failures onto sentinel errors that
// callers can test with errors.Is.
package registry
