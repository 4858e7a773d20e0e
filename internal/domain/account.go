package domain

import (
	"time"
)

// Role represents an account role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole maps an optional role string to a Role, defaulting to user
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Account is the durable account record.
// VerificationTokenHash is set if and only if IsVerified is false.
type Account struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Role                  Role      `json:"role"`
	PasswordHash          string    `json:"-"`
	IsVerified            bool      `json:"is_verified"`
	VerificationTokenHash *string   `json:"-"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// AccountUpdate holds mutable account fields; nil means unchanged.
// Role is deliberately absent.
type AccountUpdate struct {
	Name *string
}

// IsEmpty reports whether the update changes nothing
func (u AccountUpdate) IsEmpty() bool {
	return u.Name == nil
}

// AccountView is the public projection of an Account
type AccountView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// View returns the public projection, without hash or token
func (a *Account) View() AccountView {
	return AccountView{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
	}
}
