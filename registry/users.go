package registry

import (
	"context"
	"net/http"
)

// User is the authenticated identity, used for organization-scoped
// resource-name construction.
type User struct {
	PRN             string `json:"prn"`
	Username        string `json:"username"`
	Email           string `json:"email,omitempty"`
	OrganizationPRN string `json:"organization_prn"`
}

type userEnvelope struct {
	Data User `json:"data"`
}

// Me returns the identity behind the configured API key.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
