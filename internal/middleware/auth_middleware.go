// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bnb-client/internal/domain/auth"
	"bnb-client/internal/pkg/jwt"
	"bnb-client/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares.
const (
	ctxIdentity = "identity"
	ctxClaims   = "claims"
	ctxUserID   = "user_id"
	ctxRole     = "role"
)

// SessionSource exposes the signed-in identity of the local session.
type SessionSource interface {
	Current() *auth.Identity
}

type AuthMiddleware struct {
	sessions SessionSource
}

func NewAuthMiddleware(sessions SessionSource) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireSession aborts with 401 unless the local session is authenticated.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := m.sessions.Current()
		if identity == nil {
			response.Error(c, http.StatusUnauthorized, "no active session", nil)
			return
		}

		c.Set(ctxIdentity, identity)
		c.Set(ctxUserID, identity.ID)
		c.Set(ctxRole, identity.Role.String())
		c.Next()
	}
}

// StudentOnly returns middlewares for routes only students may call.
func (m *AuthMiddleware) StudentOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireSession(),
		RequireRole(jwt.RoleStudent),
	}
}

// StaffOnly returns middlewares for faculty and admin routes.
func (m *AuthMiddleware) StaffOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireSession(),
		RequireRole(jwt.RoleFaculty, jwt.RoleAdmin),
	}
}

// AdminOnly returns middlewares for admin-only routes.
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireSession(),
		RequireRole(jwt.RoleAdmin),
	}
}

// BearerAuth validates the Authorization bearer token with decoder and
// stores its claims on the context.
func BearerAuth(decoder jwt.Decoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "No token provided", nil)
			return
		}

		claims, err := decoder.Decode(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUserID, claims.UserID())
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRole requires one of roles. MUST be used after RequireSession or
// BearerAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "no role found - authentication required", nil)
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		err := errors.New("user does not have required role")
		response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
			"required_roles": roles,
			"user_role":      role,
		})
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
