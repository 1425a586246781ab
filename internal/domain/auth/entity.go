// internal/domain/auth/entity.go
package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of principals the backend knows about.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole normalizes case and surrounding space.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the logged-in principal. TotalPoints is set if and only if
// Role is student.
type Identity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	CreatedAt   string `json:"createdAt"`
	TotalPoints *int64 `json:"totalPoints,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate session state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.TotalPoints != nil {
		p := *i.TotalPoints
		c.TotalPoints = &p
	}
	return &c
}

// Points returns the balance, or 0 when unset.
func (i *Identity) Points() int64 {
	if i == nil || i.TotalPoints == nil {
		return 0
	}
	return *i.TotalPoints
}

// State of the session lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateRestoring       State = "restoring"
	StateAuthenticated   State = "authenticated"
)
