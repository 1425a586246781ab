package mockapi

import (
	"time"

	"bnb-client/internal/domain/bounty"
	"bnb-client/internal/domain/reward"
	"bnb-client/internal/pkg/jwt"
)

// SeedUser is an account created when the mock starts.
type SeedUser struct {
	ID       string
	Name     string
	Password string
	Role     string
	Email    string
	Berries  int64
}

// DefaultUsers is the demo roster. alice is the canonical student.
func DefaultUsers() []SeedUser {
	return []SeedUser{
		{ID: "u-alice", Name: "alice", Password: "pw123", Role: jwt.RoleStudent, Email: "alice@college.edu", Berries: 120},
		{ID: "u-bob", Name: "bob", Password: "pw456", Role: jwt.RoleStudent, Email: "bob@college.edu", Berries: 40},
		{ID: "u-prof", Name: "prof", Password: "teach", Role: jwt.RoleFaculty, Email: "prof@college.edu"},
		{ID: "u-admin", Name: "admin", Password: "admin", Role: jwt.RoleAdmin, Email: "admin@college.edu"},
	}
}

const timeLayout = time.RFC3339

// DefaultBounties schedules the demo events relative to now.
func DefaultBounties(now time.Time) []bounty.Bounty {
	day := 24 * time.Hour
	return []bounty.Bounty{
		{
			ID: "b-cleanup", Name: "Campus Cleanup", Description: "Help tidy the main lawn.",
			Type: "Community", Venue: "Main Lawn", ScheduledDate: now.Add(3 * day).UTC().Format(timeLayout),
			AllotedPoints: 50, AllotedBerries: 20, Capacity: 30, CurrentParticipants: 12,
		},
		{
			ID: "b-hackathon", Name: "Hackathon", Description: "24 hours of building.",
			Type: "Technical", Venue: "Lab 2", ScheduledDate: now.Add(10 * day).UTC().Format(timeLayout),
			AllotedPoints: 100, AllotedBerries: 50, Capacity: 2, CurrentParticipants: 1,
		},
		{
			ID: "b-blood", Name: "Blood Donation Drive", Description: "Donate and save lives.",
			Type: "Social", Venue: "Health Centre", ScheduledDate: now.Add(-5 * day).UTC().Format(timeLayout),
			AllotedPoints: 30, AllotedBerries: 10, Capacity: 0, CurrentParticipants: 48,
			Status: bounty.StatusCompleted,
		},
	}
}

// DefaultRewards is the demo catalogue.
func DefaultRewards(now time.Time) []reward.Reward {
	day := 24 * time.Hour
	return []reward.Reward{
		{ID: "r-coupon", Name: "Canteen Coupon", Description: "One free meal.", Cost: 30, Quantity: 100, ExpiryDate: now.Add(30 * day).UTC().Format(timeLayout)},
		{ID: "r-latepass", Name: "Library Late Pass", Description: "Return a book late once.", Cost: 50, Quantity: 1, ExpiryDate: now.Add(5 * day).UTC().Format(timeLayout)},
		{ID: "r-hoodie", Name: "College Hoodie", Cost: 500, Quantity: 10},
	}
}
