package user

import "testing"

func TestCheckPassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Sup3r$ecret", true},
		{"short1!A", true},
		{"nouppercase1!", false},
		{"NOLOWERCASE1!", false},
		{"NoNumbers!!", false},
		{"NoSpecial123", false},
		{"Ab1!", false},
	}
	for _, tc := range cases {
		if got := CheckPassword(tc.password).Valid(); got != tc.valid {
			t.Fatalf("CheckPassword(%q).Valid() = %v, want %v", tc.password, got, tc.valid)
		}
	}
}

func TestChangePasswordValidate(t *testing.T) {
	req := ChangePasswordRequest{CurrentPassword: "old", NewPassword: "Sup3r$ecret", ConfirmPassword: "Sup3r$ecret"}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	req.ConfirmPassword = "different"
	if err := req.Validate(); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := (&ChangePasswordRequest{}).Validate(); err == nil {
		t.Fatalf("expected missing fields error")
	}
}

func TestCreateUserValidate(t *testing.T) {
	req := CreateUserRequest{Name: "Ravi", Mobile: "9876543210", Role: "student", CollegeID: "C-12"}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	req.Mobile = "12345"
	if err := req.Validate(); err == nil {
		t.Fatalf("expected short mobile to fail")
	}
}
