package api

import (
	"context"
	"net/http"

	"bnb-client/internal/domain/auth"
)

// Login exchanges credentials for a bearer token. It is the only
// unauthenticated call.
func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	var out auth.LoginResponse
	err := c.do(ctx, call{
		op:       "login",
		method:   http.MethodPost,
		path:     "/api/auth/login",
		json:     req,
		fallback: "Login failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
