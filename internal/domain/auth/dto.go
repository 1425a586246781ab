// internal/domain/auth/dto.go
package auth

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// LoginResponse carries the bearer token issued by the backend.
type LoginResponse struct {
	Token string `json:"token"`
}

// SessionView is what local surfaces render for the current session.
type SessionView struct {
	State     State     `json:"state"`
	IsLoading bool      `json:"isLoading"`
	User      *Identity `json:"user"`
	LastError string    `json:"lastError,omitempty"`
}
