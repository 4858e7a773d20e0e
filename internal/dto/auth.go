package dto

import (
	"strings"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

// SignupRequest represents a signup request. Role is optional.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// MissingField returns the first required field that is blank
func (r *SignupRequest) MissingField() string {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return "name"
	case strings.TrimSpace(r.Email) == "":
		return "email"
	case r.Password == "":
		return "password"
	}
	return ""
}

// SignupResponse is returned after an account is created
type SignupResponse struct {
	User                  domain.AccountView `json:"user"`
	VerificationEmailSent bool               `json:"verification_email_sent"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MissingField returns the first required field that is blank
func (r *LoginRequest) MissingField() string {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return "email"
	case r.Password == "":
		return "password"
	}
	return ""
}

// TokenTypeBearer is the only session token type
const TokenTypeBearer = "Bearer"

// LoginResponse carries the session token and the account view
type LoginResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresIn   int64              `json:"expires_in"`
	User        domain.AccountView `json:"user"`
}

// UpdateProfileRequest changes the caller's own profile. Role and email are
// not editable.
type UpdateProfileRequest struct {
	Name *string `json:"name"`
}

// VerifyResponse confirms a consumed verification token
type VerifyResponse struct {
	Verified bool `json:"verified"`
}
