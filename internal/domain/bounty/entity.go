// internal/domain/bounty/entity.go
package bounty

import (
	"time"

	"bnb-client/internal/domain/shared"
)

// Status values the search endpoint filters on.
const (
	StatusUpcoming   = "upcoming"
	StatusRegistered = "registered"
	StatusCompleted  = "completed"
	StatusTrending   = "trending"
)

// Bounty is a campus event students register for to earn berries.
type Bounty struct {
	ID                  shared.ID `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	Type                string    `json:"type,omitempty"`
	Venue               string    `json:"venue,omitempty"`
	ScheduledDate       string    `json:"scheduled_date,omitempty"`
	AllotedPoints       int64     `json:"alloted_points"`
	AllotedBerries      int64     `json:"alloted_berries"`
	Capacity            int64     `json:"capacity"`
	CurrentParticipants int64     `json:"current_participants"`
	ImgURL              string    `json:"img_url,omitempty"`
	IsRegistered        bool      `json:"is_registered"`
	Status              string    `json:"status,omitempty"`
}

// ScheduledAt parses ScheduledDate; zero when absent.
func (b *Bounty) ScheduledAt() (time.Time, error) {
	return shared.ParseTime(b.ScheduledDate)
}

// SpotsLeft is capacity minus current participants, floored at zero.
// A zero capacity means unlimited and reports -1.
func (b *Bounty) SpotsLeft() int64 {
	if b.Capacity <= 0 {
		return -1
	}
	left := b.Capacity - b.CurrentParticipants
	if left < 0 {
		return 0
	}
	return left
}

func (b *Bounty) Full() bool {
	return b.SpotsLeft() == 0
}

// List accepts a bare array or a {results|bounties|data} wrapper.
type List []Bounty

func (l *List) UnmarshalJSON(b []byte) error {
	items, err := shared.DecodeList[Bounty](b, "results", "bounties", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}
