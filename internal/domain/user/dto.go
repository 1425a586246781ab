// internal/domain/user/dto.go
package user

import (
	"fmt"
	"regexp"
	"strings"

	"bnb-client/internal/domain/shared"
)

// AvailableBerriesResponse is GET /api/users/available-berries.
type AvailableBerriesResponse struct {
	AvailableBerries *int64 `json:"availableBerries"`
}

// CreateUserRequest is the admin "add user" form.
type CreateUserRequest struct {
	Name      string `json:"name" binding:"required"`
	Mobile    string `json:"mobile" binding:"required"`
	Role      string `json:"role" binding:"required"`
	CollegeID string `json:"college_id" binding:"required"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
}

// Validate applies the add-user form's checks.
func (r *CreateUserRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Mobile) == "":
		return fmt.Errorf("mobile number is required")
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(r.CollegeID) == "":
		return fmt.Errorf("college ID is required")
	case len(strings.TrimSpace(r.Mobile)) < 10:
		return fmt.Errorf("please enter a valid mobile number")
	}
	return nil
}

// User is the backend's user record.
type User struct {
	ID        shared.ID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Mobile    string    `json:"mobile,omitempty"`
	Role      string    `json:"role"`
	CollegeID string    `json:"college_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
	ImgURL    string    `json:"img_url,omitempty"`
}

// BulkCreateResponse summarizes POST /api/users/bulk.
type BulkCreateResponse struct {
	Message string   `json:"message,omitempty"`
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ProfileImageResponse is PATCH /api/users/profile-image.
type ProfileImageResponse struct {
	Message string `json:"message,omitempty"`
	ImgURL  string `json:"img_url,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"-"`
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordPolicy reports which strength rules a password meets.
type PasswordPolicy struct {
	MinLength      bool `json:"minLength"`
	HasUpperCase   bool `json:"hasUpperCase"`
	HasLowerCase   bool `json:"hasLowerCase"`
	HasNumbers     bool `json:"hasNumbers"`
	HasSpecialChar bool `json:"hasSpecialChar"`
}

func (p PasswordPolicy) Valid() bool {
	return p.MinLength && p.HasUpperCase && p.HasLowerCase && p.HasNumbers && p.HasSpecialChar
}

func CheckPassword(password string) PasswordPolicy {
	return PasswordPolicy{
		MinLength:      len(password) >= 8,
		HasUpperCase:   upperRe.MatchString(password),
		HasLowerCase:   lowerRe.MatchString(password),
		HasNumbers:     digitRe.MatchString(password),
		HasSpecialChar: specialRe.MatchString(password),
	}
}

// Validate applies the change-password screen's checks.
func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" || r.NewPassword == "" || r.ConfirmPassword == "" {
		return fmt.Errorf("please fill in all fields")
	}
	if r.NewPassword != r.ConfirmPassword {
		return fmt.Errorf("new passwords do not match")
	}
	if !CheckPassword(r.NewPassword).Valid() {
		return fmt.Errorf("password does not meet security requirements")
	}
	return nil
}
