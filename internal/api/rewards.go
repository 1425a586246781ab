package api

import (
	"context"
	"encoding/json"
	"net/http"

	"bnb-client/internal/domain/reward"
)

func (c *Client) ListRewards(ctx context.Context) (reward.List, error) {
	var out reward.List
	err := c.do(ctx, call{
		op:       "list_rewards",
		method:   http.MethodGet,
		path:     "/api/reward",
		auth:     true,
		fallback: "Failed to fetch rewards",
	}, &out)
	if out == nil {
		out = reward.List{}
	}
	return out, err
}

func (c *Client) GetReward(ctx context.Context, id string) (*reward.Reward, error) {
	path, err := idPath("/api/reward/", id)
	if err != nil {
		return nil, err
	}
	var out reward.Reward
	err = c.do(ctx, call{
		op:       "get_reward",
		method:   http.MethodGet,
		path:     path,
		auth:     true,
		fallback: "Failed to fetch reward",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchRewards(ctx context.Context, req reward.SearchRequest) (*reward.SearchResponse, error) {
	var out reward.SearchResponse
	err := c.do(ctx, call{
		op:       "search_rewards",
		method:   http.MethodPost,
		path:     "/api/reward/search",
		json:     req,
		auth:     true,
		fallback: "Failed to search rewards",
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Results = out.Items()
	return &out, nil
}

// ClaimReward spends berries on a reward. The backend reports claim
// failures under "error" rather than "message".
func (c *Client) ClaimReward(ctx context.Context, id string) (*reward.ClaimResponse, error) {
	path, err := idPath("/api/reward/", id)
	if err != nil {
		return nil, err
	}
	var out reward.ClaimResponse
	err = c.do(ctx, call{
		op:       "claim_reward",
		method:   http.MethodPost,
		path:     path + "/claim",
		auth:     true,
		fallback: "Failed to claim reward",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClaimedRewards(ctx context.Context) (reward.ClaimedList, error) {
	var out reward.ClaimedList
	err := c.do(ctx, call{
		op:       "claimed_rewards",
		method:   http.MethodGet,
		path:     "/api/reward/user/claimed",
		auth:     true,
		fallback: "Failed to fetch claimed rewards",
	}, &out)
	if out == nil {
		out = reward.ClaimedList{}
	}
	return out, err
}

func (c *Client) CreateReward(ctx context.Context, req reward.Request) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		op:       "create_reward",
		method:   http.MethodPost,
		path:     "/api/reward",
		form:     req.Form(),
		auth:     true,
		fallback: "Failed to create reward",
	}, &out)
	return out, err
}

func (c *Client) UpdateReward(ctx context.Context, id string, req reward.Request) (json.RawMessage, error) {
	path, err := idPath("/api/reward/", id)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	err = c.do(ctx, call{
		op:       "update_reward",
		method:   http.MethodPut,
		path:     path,
		form:     req.Form(),
		auth:     true,
		fallback: "Failed to update reward",
	}, &out)
	return out, err
}

func (c *Client) DeleteReward(ctx context.Context, id string) error {
	path, err := idPath("/api/reward/", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		op:       "delete_reward",
		method:   http.MethodDelete,
		path:     path,
		auth:     true,
		fallback: "Failed to delete reward",
	}, nil)
}
