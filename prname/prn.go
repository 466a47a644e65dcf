// Package prn parses and constructs registry resource names.
//
// A resource name ("PRN") addresses a registry resource deterministically,
// without a prior lookup. Two shapes exist:
//
//	prn:1:<organization-uuid>                          organization
//	prn:1:<organization-uuid>:<resource-type>:<uuid>   resource
//
// The version segment must be "1". Both UUID segments are validated.
package prn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Resource type segments used by the registry.
const (
	TypeArtifact        = "artifact"
	TypeArtifactVersion = "artifact_version"
	TypeBinary          = "binary"
	TypeBundle          = "bundle"
	TypeSigningKey      = "signing_key"
)

// Sentinel errors for PRN parsing and construction.
var (
	// ErrInvalidFormat is returned when a PRN does not have 3 or 5 colon-separated parts.
	ErrInvalidFormat = errors.New("prn: invalid format")

	// ErrInvalidPrefix is returned when a PRN does not start with "prn".
	ErrInvalidPrefix = errors.New("prn: invalid prefix")

	// ErrUnsupportedVersion is returned when the version segment is not "1".
	ErrUnsupportedVersion = errors.New("prn: unsupported version")

	// ErrInvalidOrganizationID is returned when the organization segment is not a UUID.
	ErrInvalidOrganizationID = errors.New("prn: invalid organization id")

	// ErrInvalidResourceID is returned when the resource segment is not a UUID.
	ErrInvalidResourceID = errors.New("prn: invalid resource id")
)

// PRN is a parsed resource name.
type PRN struct {
	Version        string
	OrganizationID string
	ResourceType   string
	ResourceID     string
}

// String reassembles the canonical five-part form.
func (p PRN) String() string {
	return fmt.Sprintf("prn:%s:%s:%s:%s", p.Version, p.OrganizationID, p.ResourceType, p.ResourceID)
}

// Parse parses a five-part resource PRN.
func Parse(s string) (PRN, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 5 {
		return PRN{}, fmt.Errorf("%w: want 5 parts, got %d", ErrInvalidFormat, len(parts))
	}
	if parts[0] != "prn" {
		return PRN{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, parts[0])
	}
	if parts[1] != "1" {
		return PRN{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, parts[1])
	}
	if _, err := uuid.Parse(parts[2]); err != nil {
		return PRN{}, fmt.Errorf("%w: %q", ErrInvalidOrganizationID, parts[2])
	}
	if _, err := uuid.Parse(parts[4]); err != nil {
		return PRN{}, fmt.Errorf("%w: %q", ErrInvalidResourceID, parts[4])
	}
	return PRN{
		Version:        parts[1],
		OrganizationID: parts[2],
		ResourceType:   parts[3],
		ResourceID:     parts[4],
	}, nil
}

// ResourceID extracts the resource id segment from a five-part PRN.
func ResourceID(s string) (string, error) {
	p, err := Parse(s)
	if err != nil {
		return "", err
	}
	return p.ResourceID, nil
}

// ParseOrganizationID extracts the organization id from a three-part
// organization PRN.
func ParseOrganizationID(s string) (string, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: organization PRN wants 3 parts, got %d", ErrInvalidFormat, len(parts))
	}
	if parts[0] != "prn" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, parts[0])
	}
	if parts[1] != "1" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, parts[1])
	}
	if _, err := uuid.Parse(parts[2]); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrganizationID, parts[2])
	}
	return parts[2], nil
}

// Builder constructs resource PRNs scoped to one organization.
type Builder struct {
	organizationID string
}

// NewBuilder creates a Builder for the given organization id.
func NewBuilder(organizationID string) *Builder {
	return &Builder{organizationID: organizationID}
}

// FromPRN creates a Builder from an existing organization or resource PRN.
func FromPRN(s string) (*Builder, error) {
	switch strings.Count(s, ":") {
	case 2:
		orgID, err := ParseOrganizationID(s)
		if err != nil {
			return nil, err
		}
		return NewBuilder(orgID), nil
	case 4:
		p, err := Parse(s)
		if err != nil {
			return nil, err
		}
		return NewBuilder(p.OrganizationID), nil
	default:
		return nil, fmt.Errorf("%w: want 3 or 5 parts: %q", ErrInvalidFormat, s)
	}
}

// Artifact builds an artifact PRN.
func (b *Builder) Artifact(id string) (string, error) {
	return b.Build(TypeArtifact, id)
}

// ArtifactVersion builds an artifact version PRN.
func (b *Builder) ArtifactVersion(id string) (string, error) {
	return b.Build(TypeArtifactVersion, id)
}

// Binary builds a binary PRN.
func (b *Builder) Binary(id string) (string, error) {
	return b.Build(TypeBinary, id)
}

// Bundle builds a bundle PRN.
func (b *Builder) Bundle(id string) (string, error) {
	return b.Build(TypeBundle, id)
}

// Build builds a PRN with an arbitrary resource type segment.
func (b *Builder) Build(resourceType, resourceID string) (string, error) {
	if _, err := uuid.Parse(b.organizationID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrganizationID, b.organizationID)
	}
	if _, err := uuid.Parse(resourceID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidResourceID, resourceID)
	}
	return fmt.Sprintf("prn:1:%s:%s:%s", b.organizationID, resourceType, resourceID), nil
}
