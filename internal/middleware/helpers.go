// internal/middleware/helpers.go
package middleware

import (
	"bnb-client/internal/domain/auth"
	"bnb-client/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// GetIdentity returns the session identity set by RequireSession.
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	v, exists := c.Get(ctxIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok
}

// GetClaims returns the token claims set by BearerAuth.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// MustGetUserID gets the user ID from context or panics
func MustGetUserID(c *gin.Context) string {
	id, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return id
}

func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func GetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok && role != ""
}

// HasRole checks the caller's role
func HasRole(c *gin.Context, role string) bool {
	r, ok := GetRole(c)
	return ok && r == role
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(ctxUserID)
	return exists
}

func IsAdmin(c *gin.Context) bool {
	return HasRole(c, jwt.RoleAdmin)
}
