package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

// DefaultSessionTTL is the lifetime of a session token
const DefaultSessionTTL = time.Hour

// SessionTokenCodec issues and verifies signed session tokens
type SessionTokenCodec interface {
	Issue(subjectID string, role domain.Role, isVerified bool) (token string, expiresAt time.Time, err error)
	Verify(token string) (domain.SessionClaims, error)
}

// sessionClaims is the JWT payload
type sessionClaims struct {
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	jwt.RegisteredClaims
}

// JWTCodec is an HS256 SessionTokenCodec. The key is read-only after
// construction and safe for concurrent use.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// JWTOption configures a JWTCodec
type JWTOption func(*JWTCodec)

// WithClock overrides the time source
func WithClock(now func() time.Time) JWTOption {
	return func(c *JWTCodec) { c.now = now }
}

// WithIssuer sets the iss claim
func WithIssuer(issuer string) JWTOption {
	return func(c *JWTCodec) { c.issuer = issuer }
}

// NewJWTCodec creates a codec signing with secret
func NewJWTCodec(secret string, ttl time.Duration, opts ...JWTOption) *JWTCodec {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	c := &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs claims expiring TTL after now
func (c *JWTCodec) Issue(subjectID string, role domain.Role, isVerified bool) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	claims := sessionClaims{
		Role:       string(role),
		IsVerified: isVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, structure and expiry. It never touches storage.
func (c *JWTCodec) Verify(tokenString string) (domain.SessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.SessionClaims{}, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.SessionClaims{}, domain.ErrTokenBadSignature
		default:
			return domain.SessionClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
		}
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || !role.IsValid() {
		return domain.SessionClaims{}, domain.ErrTokenMalformed
	}

	return domain.SessionClaims{
		SubjectID:  claims.Subject,
		Role:       role,
		IsVerified: claims.IsVerified,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
