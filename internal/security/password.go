package security

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// BcryptHasher is a PasswordHasher backed by bcrypt. Salt and cost are
// embedded in the produced hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher, clamping cost to bcrypt's bounds
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plain
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prepare(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares plain against hash in constant time
func (h *BcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(plain)) == nil
}

// prepare pre-hashes every input so bcrypt never sees more than 44 bytes.
// Applying it to all lengths keeps a digest from verifying as a password.
func prepare(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
