// internal/domain/reward/dto.go
package reward

import (
	"fmt"
	"sort"
	"strings"

	"bnb-client/internal/domain/shared"
)

type SearchRequest struct {
	Filters    map[string]string `json:"filters,omitempty"`
	SortBy     string            `json:"sortBy,omitempty"`
	SortOrder  string            `json:"sortOrder,omitempty"`
	PageNumber int               `json:"pageNumber,omitempty"`
	PageSize   int               `json:"pageSize,omitempty"`
}

type SearchResponse struct {
	Results []Reward `json:"results"`
	Total   int64    `json:"total,omitempty"`
}

func (r *SearchResponse) Items() []Reward {
	if r == nil || r.Results == nil {
		return []Reward{}
	}
	return r.Results
}

// ClaimResponse is returned by POST /api/reward/:id/claim.
type ClaimResponse struct {
	Message          string    `json:"message,omitempty"`
	ClaimID          shared.ID `json:"claim_id,omitempty"`
	RedeemableCode   string    `json:"redeemable_code,omitempty"`
	RemainingBerries *int64    `json:"remainingBerries,omitempty"`
}

// Request is the create/update reward form. Zero numeric fields are sent
// as-is; empty strings are skipped.
type Request struct {
	Name        string
	Description string
	Cost        int64
	Quantity    int64
	ExpiryDate  string
	Extra       map[string]string
	Image       *shared.Upload
}

func (r *Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if r.Cost < 0 {
		return fmt.Errorf("cost cannot be negative")
	}
	if r.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	return nil
}

func (r *Request) Form() *shared.Form {
	f := &shared.Form{}
	f.Add("name", strings.TrimSpace(r.Name))
	if r.Description != "" {
		f.Add("description", r.Description)
	}
	f.AddInt("cost", r.Cost)
	f.AddInt("quantity", r.Quantity)
	if r.ExpiryDate != "" {
		f.Add("expiry_date", r.ExpiryDate)
	}
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := r.Extra[k]; v != "" {
			f.Add(k, v)
		}
	}
	f.AttachFile("image", r.Image)
	return f
}

// ClaimRequest creates or updates a record under /api/reward-claims.
type ClaimRequest struct {
	RewardID string `json:"reward_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Status   string `json:"status,omitempty"`
}
