// Package credential holds the pure input checks applied to signup and login
// credentials.
package credential

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

// MinPasswordLength is the minimum password length in characters.
// There is no maximum.
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims whitespace and lower-cases the address. Emails are
// compared case-insensitively everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks local@domain.tld syntax
func ValidateEmail(email string) error {
	if email == "" || !emailRegex.MatchString(email) {
		return domain.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword requires MinPasswordLength characters, one uppercase
// letter and one digit
func ValidatePassword(password string) error {
	var (
		length   int
		hasUpper bool
		hasDigit bool
	)
	for _, ch := range password {
		length++
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if length < MinPasswordLength || !hasUpper || !hasDigit {
		return domain.ErrWeakPassword
	}
	return nil
}
