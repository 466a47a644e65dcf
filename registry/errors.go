package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations.
var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("registry: not found")

	// ErrUnauthorized is returned when the API key is missing or rejected.
	ErrUnauthorized = errors.New("registry: unauthorized")

	// ErrRateLimited is returned when the registry keeps answering 429
	// after the retry budget is spent.
	ErrRateLimited = errors.New("registry: rate limited")

	// ErrConflict is returned when a create collides with an existing resource.
	ErrConflict = errors.New("registry: conflict")

	// ErrUnsupportedAPIVersion is returned for API versions the client
	// does not speak.
	ErrUnsupportedAPIVersion = errors.New("registry: unsupported api version")
)

// APIError is a registry failure carrying the HTTP status and the
// machine-readable error code reported by the server.
type APIError struct {
	Status int    // HTTP status code
	Code   string // server error code, e.g. "too_many_requests"
	Detail string // human-readable message from the server
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("registry: %s (status %d, code %s)", e.Detail, e.Status, e.Code)
	}
	return fmt.Sprintf("registry: request failed (status %d, code %s)", e.Status, e.Code)
}

// Is maps well-known statuses onto the package sentinels so callers can
// use errors.Is without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrUnauthorized:
		return e.Status == 401 || e.Status == 403
	case ErrRateLimited:
		return e.Status == 429
	case ErrConflict:
		return e.Status == 409
	}
	return false
}
