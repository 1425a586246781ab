package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"bnb-client/internal/domain/bounty"
	"bnb-client/internal/domain/shared"
)

// ListBounties issues GET /api/bounties with the non-empty params as the
// query string.
func (c *Client) ListBounties(ctx context.Context, params bounty.ListParams) (bounty.List, error) {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}

	var out bounty.List
	err := c.do(ctx, call{
		op:       "list_bounties",
		method:   http.MethodGet,
		path:     "/api/bounties",
		query:    q,
		auth:     true,
		fallback: "Failed to fetch events",
	}, &out)
	if out == nil {
		out = bounty.List{}
	}
	return out, err
}

func (c *Client) GetBounty(ctx context.Context, id string) (*bounty.Bounty, error) {
	path, err := idPath("/api/bounties/", id)
	if err != nil {
		return nil, err
	}
	var out bounty.Bounty
	err = c.do(ctx, call{
		op:       "get_bounty",
		method:   http.MethodGet,
		path:     path,
		auth:     true,
		fallback: "Failed to fetch event",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterForBounty(ctx context.Context, id string) (*bounty.RegisterResponse, error) {
	path, err := idPath("/api/bounties/register/", id)
	if err != nil {
		return nil, err
	}
	var out bounty.RegisterResponse
	err = c.do(ctx, call{
		op:       "register_bounty",
		method:   http.MethodPost,
		path:     path,
		auth:     true,
		fallback: "Failed to register for event",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBounty(ctx context.Context, form *shared.Form) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		op:       "create_bounty",
		method:   http.MethodPost,
		path:     "/api/bounties",
		form:     formOrEmpty(form),
		auth:     true,
		fallback: "Failed to create event",
	}, &out)
	return out, err
}

func (c *Client) UpdateBounty(ctx context.Context, id string, form *shared.Form) (json.RawMessage, error) {
	path, err := idPath("/api/bounties/", id)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	err = c.do(ctx, call{
		op:       "update_bounty",
		method:   http.MethodPut,
		path:     path,
		form:     formOrEmpty(form),
		auth:     true,
		fallback: "Failed to update event",
	}, &out)
	return out, err
}

func (c *Client) DeleteBounty(ctx context.Context, id string) error {
	path, err := idPath("/api/bounties/", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		op:       "delete_bounty",
		method:   http.MethodDelete,
		path:     path,
		auth:     true,
		fallback: "Failed to delete event",
	}, nil)
}

func (c *Client) SearchBounties(ctx context.Context, req bounty.SearchRequest) (*bounty.SearchResponse, error) {
	var out bounty.SearchResponse
	err := c.do(ctx, call{
		op:       "search_bounties",
		method:   http.MethodPost,
		path:     "/api/bounties/search",
		json:     req,
		auth:     true,
		fallback: "Failed to search events",
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Results = out.Items()
	return &out, nil
}

func (c *Client) AllBountiesAdmin(ctx context.Context) (bounty.List, error) {
	var out bounty.List
	err := c.do(ctx, call{
		op:       "all_bounties_admin",
		method:   http.MethodGet,
		path:     "/api/bounties/admin/all",
		auth:     true,
		fallback: "Failed to fetch all events (admin)",
	}, &out)
	if out == nil {
		out = bounty.List{}
	}
	return out, err
}

func formOrEmpty(f *shared.Form) *shared.Form {
	if f == nil {
		return &shared.Form{}
	}
	return f
}
