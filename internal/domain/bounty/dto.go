// internal/domain/bounty/dto.go
package bounty

import (
	"fmt"
	"strings"
	"time"

	"bnb-client/internal/domain/shared"
)

// SearchFilters narrows POST /api/bounties/search. Empty fields are omitted.
type SearchFilters struct {
	Status string `json:"status,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
}

type SearchRequest struct {
	Filters    SearchFilters `json:"filters"`
	SortBy     string        `json:"sortBy,omitempty"`
	SortOrder  string        `json:"sortOrder,omitempty"`
	PageNumber int           `json:"pageNumber,omitempty"`
	PageSize   int           `json:"pageSize,omitempty"`
}

// SectionSearch is the request each events screen section issues.
func SectionSearch(status, name, category string) SearchRequest {
	if category == "All" {
		category = ""
	}
	return SearchRequest{
		Filters:    SearchFilters{Status: status, Name: strings.TrimSpace(name), Type: category},
		SortBy:     "scheduled_date",
		SortOrder:  "asc",
		PageNumber: 1,
		PageSize:   50,
	}
}

// TrendingSearch is the home screen's popular events query.
func TrendingSearch(limit int) SearchRequest {
	return SearchRequest{
		Filters:    SearchFilters{Status: StatusTrending},
		SortBy:     "trending_score",
		SortOrder:  "desc",
		PageNumber: 1,
		PageSize:   limit,
	}
}

// SearchResponse wraps search results. A missing results array decodes as
// an empty slice via Items.
type SearchResponse struct {
	Results    []Bounty `json:"results"`
	Total      int64    `json:"total,omitempty"`
	PageNumber int      `json:"pageNumber,omitempty"`
	PageSize   int      `json:"pageSize,omitempty"`
}

func (r *SearchResponse) Items() []Bounty {
	if r == nil || r.Results == nil {
		return []Bounty{}
	}
	return r.Results
}

// ListParams are query parameters for GET /api/bounties. Empty values are
// skipped.
type ListParams map[string]string

// RegisterResponse is returned by POST /api/bounties/register/:id.
type RegisterResponse = shared.MessageResponse

// CreateRequest is the faculty "create event" form.
type CreateRequest struct {
	Title       string
	Description string
	Date        time.Time
	Venue       string
	Points      int64
	Berries     int64
	Capacity    int64
	Type        string
	Image       *shared.Upload
}

// Validate mirrors the checks the event form performs before submitting.
func (r *CreateRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("title is required")
	case strings.TrimSpace(r.Description) == "":
		return fmt.Errorf("description is required")
	case r.Date.IsZero():
		return fmt.Errorf("date is required")
	case strings.TrimSpace(r.Venue) == "":
		return fmt.Errorf("venue is required")
	case r.Points <= 0:
		return fmt.Errorf("valid points value is required")
	case r.Capacity <= 0:
		return fmt.Errorf("valid capacity value is required")
	case r.Berries < 0:
		return fmt.Errorf("berries cannot be negative")
	}
	return nil
}

// Form renders the request as the multipart fields the backend expects.
func (r *CreateRequest) Form() *shared.Form {
	f := &shared.Form{}
	f.Add("title", strings.TrimSpace(r.Title))
	f.Add("description", strings.TrimSpace(r.Description))
	f.Add("date", r.Date.UTC().Format("2006-01-02T15:04:05Z"))
	f.Add("venue", strings.TrimSpace(r.Venue))
	f.AddInt("points", r.Points)
	f.AddInt("berries", r.Berries)
	f.AddInt("capacity", r.Capacity)
	f.Add("type", r.Type)
	f.AttachFile("image", r.Image)
	return f
}
