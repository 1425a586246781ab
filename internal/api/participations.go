package api

import (
	"context"
	"encoding/json"
	"net/http"

	"bnb-client/internal/domain/participation"
)

// MyParticipations lists the bounties the caller registered for.
func (c *Client) MyParticipations(ctx context.Context) (*participation.MyParticipationsResponse, error) {
	var out participation.MyParticipationsResponse
	err := c.do(ctx, call{
		op:       "my_participations",
		method:   http.MethodGet,
		path:     "/api/bounty-participation/my",
		auth:     true,
		fallback: "Failed to fetch your participations",
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Participations = out.Items()
	return &out, nil
}

func (c *Client) BountyParticipants(ctx context.Context, bountyID string) (participation.ParticipantList, error) {
	path, err := idPath("/api/bounty-participation/bounty/", bountyID)
	if err != nil {
		return nil, err
	}
	var out participation.ParticipantList
	err = c.do(ctx, call{
		op:       "bounty_participants",
		method:   http.MethodGet,
		path:     path,
		auth:     true,
		fallback: "Failed to fetch bounty participants",
	}, &out)
	if out == nil {
		out = participation.ParticipantList{}
	}
	return out, err
}

func (c *Client) ListParticipations(ctx context.Context) (participation.RecordList, error) {
	var out participation.RecordList
	err := c.do(ctx, call{
		op:       "list_participations",
		method:   http.MethodGet,
		path:     "/api/participation/",
		auth:     true,
		fallback: "Failed to list participations",
	}, &out)
	if out == nil {
		out = participation.RecordList{}
	}
	return out, err
}

func (c *Client) CreateParticipation(ctx context.Context, req participation.Request) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		op:       "create_participation",
		method:   http.MethodPost,
		path:     "/api/participation/",
		json:     req,
		auth:     true,
		fallback: "Failed to create participation",
	}, &out)
	return out, err
}

func (c *Client) UpdateParticipation(ctx context.Context, id string, req participation.Request) (json.RawMessage, error) {
	path, err := idPath("/api/participation/", id)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	err = c.do(ctx, call{
		op:       "update_participation",
		method:   http.MethodPut,
		path:     path,
		json:     req,
		auth:     true,
		fallback: "Failed to update participation",
	}, &out)
	return out, err
}

func (c *Client) DeleteParticipation(ctx context.Context, id string) error {
	path, err := idPath("/api/participation/", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		op:       "delete_participation",
		method:   http.MethodDelete,
		path:     path,
		auth:     true,
		fallback: "Failed to delete participation",
	}, nil)
}
