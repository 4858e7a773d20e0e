package domain

import "time"

// EventVerificationEmailRequested is the event type header value
const EventVerificationEmailRequested = "auth.verification_email.requested"

// VerificationEmailRequested asks the mailer to deliver a verification link
type VerificationEmailRequested struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	AccountEmail string    `json:"account_email"`
	VerifyURL    string    `json:"verify_url"`
	RequestedAt  time.Time `json:"requested_at"`
	Version      int       `json:"version"`
}

// Key returns the partition key so mail for one address stays ordered
func (e *VerificationEmailRequested) Key() string {
	return e.AccountEmail
}
