// internal/pkg/jwt/claims.go
package jwt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role names as issued by the backend.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// ClaimID accepts both string and numeric identifiers in the token payload.
type ClaimID string

func (id *ClaimID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ClaimID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id claim: %w", err)
	}
	*id = ClaimID(n.String())
	return nil
}

// Claims represents the identity claims the backend signs into its tokens.
type Claims struct {
	ID    ClaimID `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email,omitempty"`
	Role  string  `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the identifier claim as a plain string.
func (c *Claims) UserID() string {
	return string(c.ID)
}

// HasRole checks if the claims carry the given role
func (c *Claims) HasRole(role string) bool {
	return c.Role == role
}

func (c *Claims) IsStudent() bool { return c.HasRole(RoleStudent) }
func (c *Claims) IsFaculty() bool { return c.HasRole(RoleFaculty) }
func (c *Claims) IsAdmin() bool   { return c.HasRole(RoleAdmin) }

// Expired reports whether an exp claim is present and not after now.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// validate checks the claims every decoder requires.
func (c *Claims) validate() error {
	if c.ID == "" {
		return fmt.Errorf("missing id claim")
	}
	switch c.Role {
	case RoleStudent, RoleFaculty, RoleAdmin:
	case "":
		return fmt.Errorf("missing role claim")
	default:
		return fmt.Errorf("unknown role claim %q", c.Role)
	}
	return nil
}
