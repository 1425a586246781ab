// internal/domain/reward/entity.go
package reward

import (
	"time"

	"bnb-client/internal/domain/shared"
)

// Claimed reward statuses.
const (
	StatusActive       = "active"
	StatusClaimed      = "claimed"
	StatusExpired      = "expired"
	StatusExpiringSoon = "expiring_soon"
)

// ExpiringWindow is how close an expiry must be to count as expiring soon.
const ExpiringWindow = 7 * 24 * time.Hour

// Reward is an item students can redeem berries for.
type Reward struct {
	ID          shared.ID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Cost        int64     `json:"cost"`
	Quantity    int64     `json:"quantity"`
	ImgURL      string    `json:"img_url,omitempty"`
	ExpiryDate  string    `json:"expiry_date,omitempty"`
	Status      string    `json:"status,omitempty"`
}

// ClaimedReward is one row of GET /api/reward/user/claimed.
type ClaimedReward struct {
	ID             shared.ID `json:"id"`
	ClaimID        shared.ID `json:"claim_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	ImgURL         string    `json:"img_url,omitempty"`
	Status         string    `json:"status,omitempty"`
	RedeemableCode string    `json:"redeemable_code,omitempty"`
	ClaimedOn      string    `json:"claimed_on,omitempty"`
	ExpiryDate     string    `json:"expiry_date,omitempty"`
}

// IsActive is true when the reward has no expiry or expires after now.
// An unparseable expiry counts as no expiry.
func (c *ClaimedReward) IsActive(now time.Time) bool {
	exp, err := shared.ParseTime(c.ExpiryDate)
	if err != nil || exp.IsZero() {
		return true
	}
	return exp.After(now)
}

// IsExpired is true when the reward has a readable expiry at or before now.
func (c *ClaimedReward) IsExpired(now time.Time) bool {
	exp, err := shared.ParseTime(c.ExpiryDate)
	if err != nil || exp.IsZero() {
		return false
	}
	return !exp.After(now)
}

// ExpiresWithin is true when the reward expires after now but within d.
func (c *ClaimedReward) ExpiresWithin(now time.Time, d time.Duration) bool {
	exp, err := shared.ParseTime(c.ExpiryDate)
	if err != nil || exp.IsZero() {
		return false
	}
	return exp.After(now) && !exp.After(now.Add(d))
}

// Section names of the "My rewards" screen.
const (
	SectionActive   = "active"
	SectionRedeemed = "redeemed"
	SectionExpiring = "expiring"
	SectionExpired  = "expired"
)

// FilterClaimed returns the claimed rewards that belong in section.
// Active and redeemed both show non-expired rewards; expiring shows those
// expiring within ExpiringWindow and expired those past their expiry. An
// empty section returns everything, an unknown one nothing.
func FilterClaimed(items []ClaimedReward, section string, now time.Time) []ClaimedReward {
	var keep func(*ClaimedReward) bool
	switch section {
	case "":
		keep = func(*ClaimedReward) bool { return true }
	case SectionActive, SectionRedeemed:
		keep = func(c *ClaimedReward) bool { return c.IsActive(now) }
	case SectionExpiring:
		keep = func(c *ClaimedReward) bool { return c.ExpiresWithin(now, ExpiringWindow) }
	case SectionExpired:
		keep = func(c *ClaimedReward) bool { return c.IsExpired(now) }
	default:
		return []ClaimedReward{}
	}

	out := make([]ClaimedReward, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// RewardClaim is a creator-managed claim record (/api/reward-claims).
type RewardClaim struct {
	ID        shared.ID `json:"id"`
	RewardID  shared.ID `json:"reward_id"`
	UserID    shared.ID `json:"user_id"`
	Status    string    `json:"status,omitempty"`
	Code      string    `json:"redeemable_code,omitempty"`
	ClaimedOn string    `json:"claimed_on,omitempty"`
}

// List accepts a bare array or a {results|rewards|data} wrapper.
type List []Reward

func (l *List) UnmarshalJSON(b []byte) error {
	items, err := shared.DecodeList[Reward](b, "results", "rewards", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// ClaimedList accepts a bare array or a {results|rewards|claimed|data} wrapper.
type ClaimedList []ClaimedReward

func (l *ClaimedList) UnmarshalJSON(b []byte) error {
	items, err := shared.DecodeList[ClaimedReward](b, "results", "rewards", "claimed", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// ClaimList accepts a bare array or a {results|claims|data} wrapper.
type ClaimList []RewardClaim

func (l *ClaimList) UnmarshalJSON(b []byte) error {
	items, err := shared.DecodeList[RewardClaim](b, "results", "claims", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}
