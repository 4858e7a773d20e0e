package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindToken
)

// Error is a user-facing business error. Code and Message are safe to return
// to clients; wrapped causes are not.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation errors
var (
	ErrInvalidEmail   = newError(KindValidation, "INVALID_EMAIL", "Invalid email format")
	ErrWeakPassword   = newError(KindValidation, "WEAK_PASSWORD", "Password must be at least 8 characters long, contain at least one uppercase letter and one number")
	ErrMissingField   = newError(KindValidation, "MISSING_FIELD", "Missing required field")
	ErrInvalidRole    = newError(KindValidation, "INVALID_ROLE", "Role must be either user or admin")
	ErrInvalidRequest = newError(KindValidation, "INVALID_REQUEST", "Invalid request body")
	ErrInvalidToken   = newError(KindValidation, "INVALID_TOKEN", "Invalid or expired verification token")
	ErrEmptyUpdate    = newError(KindValidation, "EMPTY_UPDATE", "At least one field must be provided")
)

// Conflict errors
var (
	ErrEmailExists = newError(KindConflict, "EMAIL_EXISTS", "User already exists")
)

// Not found errors
var (
	ErrAccountNotFound = newError(KindNotFound, "ACCOUNT_NOT_FOUND", "User not found")
	ErrTokenNotFound   = newError(KindNotFound, "TOKEN_NOT_FOUND", "Verification token not found")
	ErrPostNotFound    = newError(KindNotFound, "POST_NOT_FOUND", "Post not found")
)

// Authentication errors
var (
	ErrInvalidCredentials = newError(KindAuthentication, "INVALID_CREDENTIALS", "Incorrect password")
)

// Authorization errors
var (
	ErrUnauthenticated  = newError(KindAuthorization, "UNAUTHENTICATED", "Authentication required")
	ErrEmailNotVerified = newError(KindAuthorization, "EMAIL_NOT_VERIFIED", "Please verify your email first")
	ErrInsufficientRole = newError(KindAuthorization, "INSUFFICIENT_ROLE", "Access denied")
)

// Session token errors
var (
	ErrTokenMalformed    = newError(KindToken, "TOKEN_MALFORMED", "Malformed token")
	ErrTokenBadSignature = newError(KindToken, "TOKEN_BAD_SIGNATURE", "Invalid token signature")
	ErrTokenExpired      = newError(KindToken, "TOKEN_EXPIRED", "Token has expired")
)

// ErrInternal marks store and transport failures
var ErrInternal = newError(KindInternal, "INTERNAL_ERROR", "Internal Server Error")

// Internal wraps a non-business failure so it matches ErrInternal while
// keeping the cause for logs.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrInternal, err))
}

// MissingField reports which required field was absent
func MissingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// AsError returns the first *Error in err's chain. Unknown errors are
// reported as ErrInternal.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return ErrInternal
}
