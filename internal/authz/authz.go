// Package authz holds the request guards that run before protected
// handlers. Guards are pure functions over session claims; the gin adapters
// live in internal/middleware.
package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/security"
)

const bearerPrefix = "bearer "

// Authenticate extracts the bearer token from an Authorization header value
// and verifies it. Every token failure is reported as ErrUnauthenticated;
// the specific cause stays in the chain for logging.
func Authenticate(codec security.SessionTokenCodec, header string) (domain.SessionClaims, error) {
	token, ok := bearerToken(header)
	if !ok {
		return domain.SessionClaims{}, domain.ErrUnauthenticated
	}

	claims, err := codec.Verify(token)
	if err != nil {
		return domain.SessionClaims{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return claims, nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// Guard inspects claims and either passes (nil) or rejects the request
type Guard func(claims domain.SessionClaims) error

// RequireVerified rejects accounts that have not verified their email
func RequireVerified(claims domain.SessionClaims) error {
	if !claims.IsVerified {
		return domain.ErrEmailNotVerified
	}
	return nil
}

// RequireRole rejects claims whose role differs from role
func RequireRole(role domain.Role) Guard {
	return func(claims domain.SessionClaims) error {
		if claims.Role != role {
			return domain.ErrInsufficientRole
		}
		return nil
	}
}

// Chain runs guards in order; the first failure wins
func Chain(guards ...Guard) Guard {
	return func(claims domain.SessionClaims) error {
		for _, g := range guards {
			if err := g(claims); err != nil {
				return err
			}
		}
		return nil
	}
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims domain.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims attached by Authenticate
func ClaimsFrom(ctx context.Context) (domain.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(domain.SessionClaims)
	return claims, ok
}
