package security

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
)

// verificationTokenBytes is the entropy of a verification token
const verificationTokenBytes = 32

// VerificationToken is a freshly issued token. Plain goes to the user,
// only Hash is stored.
type VerificationToken struct {
	Plain string
	Hash  string
}

// TokenConsumer atomically finds the account holding a token hash, clears
// the token and marks the account verified
type TokenConsumer interface {
	MarkVerified(ctx context.Context, tokenHash string) (*domain.Account, error)
}

// VerificationTokenService issues and consumes single-use email
// verification tokens
type VerificationTokenService struct {
	store  TokenConsumer
	random io.Reader
}

// NewVerificationTokenService creates a token service over store
func NewVerificationTokenService(store TokenConsumer) *VerificationTokenService {
	return &VerificationTokenService{
		store:  store,
		random: rand.Reader,
	}
}

// Issue generates a new unguessable token
func (s *VerificationTokenService) Issue() (VerificationToken, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return VerificationToken{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(buf)
	return VerificationToken{Plain: plain, Hash: HashToken(plain)}, nil
}

// Consume verifies the account holding token and returns its id. Unknown
// and already consumed tokens both fail with domain.ErrTokenNotFound.
func (s *VerificationTokenService) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrTokenNotFound
	}

	account, err := s.store.MarkVerified(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return "", domain.ErrTokenNotFound
		}
		return "", err
	}
	return account.ID, nil
}

// HashToken returns the hex SHA-256 digest stored in place of a token
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
