package domain

import "time"

// SessionClaims are the attributes carried by a session token.
// They are derived on demand and never persisted.
type SessionClaims struct {
	SubjectID  string
	Role       Role
	IsVerified bool
	ExpiresAt  time.Time
}
