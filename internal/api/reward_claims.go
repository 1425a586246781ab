package api

import (
	"context"
	"encoding/json"
	"net/http"

	"bnb-client/internal/domain/reward"
)

func (c *Client) CreateRewardClaim(ctx context.Context, req reward.ClaimRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		op:       "create_reward_claim",
		method:   http.MethodPost,
		path:     "/api/reward-claims",
		json:     req,
		auth:     true,
		fallback: "Failed to create reward claim",
	}, &out)
	return out, err
}

func (c *Client) ListRewardClaims(ctx context.Context) (reward.ClaimList, error) {
	var out reward.ClaimList
	err := c.do(ctx, call{
		op:       "list_reward_claims",
		method:   http.MethodGet,
		path:     "/api/reward-claims",
		auth:     true,
		fallback: "Failed to list reward claims",
	}, &out)
	if out == nil {
		out = reward.ClaimList{}
	}
	return out, err
}

func (c *Client) UpdateRewardClaim(ctx context.Context, id string, req reward.ClaimRequest) (json.RawMessage, error) {
	path, err := idPath("/api/reward-claims/", id)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	err = c.do(ctx, call{
		op:       "update_reward_claim",
		method:   http.MethodPut,
		path:     path,
		json:     req,
		auth:     true,
		fallback: "Failed to update reward claim",
	}, &out)
	return out, err
}

func (c *Client) DeleteRewardClaim(ctx context.Context, id string) error {
	path, err := idPath("/api/reward-claims/", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		op:       "delete_reward_claim",
		method:   http.MethodDelete,
		path:     path,
		auth:     true,
		fallback: "Failed to delete reward claim",
	}, nil)
}
