package credential

import (
	"errors"
	"strings"
	"testing"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@x.com", true},
		{"first.last+tag@sub.example.co", true},
		{"user_name%1@example.io", true},
		{"", false},
		{"plainaddress", false},
		{"@example.com", false},
		{"user@", false},
		{"user@example", false},
		{"user@example.c", false},
		{"user name@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid && err != nil {
				t.Errorf("ValidateEmail(%q) unexpected error: %v", tt.email, err)
			}
			if !tt.valid && !errors.Is(err, domain.ErrInvalidEmail) {
				t.Errorf("ValidateEmail(%q) = %v, want ErrInvalidEmail", tt.email, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Passw0rd", true},
		{"special characters allowed", "P@ssw0rd!", true},
		{"long password", "A1" + strings.Repeat("x", 500), true},
		{"too short", "Pass0rd", false},
		{"no uppercase", "passw0rd", false},
		{"no digit", "Password", false},
		{"empty", "", false},
		{"non-ascii counted by rune", "Ünïcödé1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid && err != nil {
				t.Errorf("ValidatePassword() unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, domain.ErrWeakPassword) {
				t.Errorf("ValidatePassword() = %v, want ErrWeakPassword", err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@X.Com "); got != "a@x.com" {
		t.Errorf("NormalizeEmail() = %q, want %q", got, "a@x.com")
	}
}
