package api

import (
	"context"
	"encoding/json"
	"net/http"

	"bnb-client/internal/domain/shared"
	"bnb-client/internal/domain/user"
)

// AvailableBerries returns the caller's spendable balance.
func (c *Client) AvailableBerries(ctx context.Context) (*user.AvailableBerriesResponse, error) {
	var out user.AvailableBerriesResponse
	err := c.do(ctx, call{
		op:       "available_berries",
		method:   http.MethodGet,
		path:     "/api/users/available-berries",
		auth:     true,
		fallback: "Failed to fetch available berries",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, req user.CreateUserRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		op:       "create_user",
		method:   http.MethodPost,
		path:     "/api/users",
		json:     req,
		auth:     true,
		fallback: "Failed to create user",
	}, &out)
	return out, err
}

// BulkCreateUsers uploads a spreadsheet of users as the "file" part.
func (c *Client) BulkCreateUsers(ctx context.Context, file *shared.Upload) (*user.BulkCreateResponse, error) {
	form := &shared.Form{}
	form.AttachFile("file", file)

	var out user.BulkCreateResponse
	err := c.do(ctx, call{
		op:       "bulk_create_users",
		method:   http.MethodPost,
		path:     "/api/users/bulk",
		form:     form,
		auth:     true,
		fallback: "Failed to bulk create users",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, req user.ChangePasswordRequest) (*shared.MessageResponse, error) {
	var out shared.MessageResponse
	err := c.do(ctx, call{
		op:       "change_password",
		method:   http.MethodPost,
		path:     "/api/users/change-password",
		json:     req,
		auth:     true,
		fallback: "Failed to change password",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfileImage replaces the caller's avatar with the "image" part.
func (c *Client) UpdateProfileImage(ctx context.Context, image *shared.Upload) (*user.ProfileImageResponse, error) {
	form := &shared.Form{}
	form.AttachFile("image", image)

	var out user.ProfileImageResponse
	err := c.do(ctx, call{
		op:       "update_profile_image",
		method:   http.MethodPatch,
		path:     "/api/users/profile-image",
		form:     form,
		auth:     true,
		fallback: "Failed to update profile image",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
