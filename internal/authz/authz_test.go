package authz

import (
	"context"
	"testing"
	"time"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-1234"

func TestAuthenticate(t *testing.T) {
	codec := security.NewJWTCodec(testSecret, time.Hour)
	token, _, err := codec.Issue("acc-1", domain.RoleAdmin, true)
	require.NoError(t, err)

	expired := security.NewJWTCodec(testSecret, time.Hour, security.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	expiredToken, _, err := expired.Issue("acc-1", domain.RoleUser, true)
	require.NoError(t, err)

	otherKey := security.NewJWTCodec("another-secret-key-that-is-long-enough", time.Hour)
	forged, _, err := otherKey.Issue("acc-1", domain.RoleAdmin, true)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		cause  error
	}{
		{name: "missing header", header: ""},
		{name: "no scheme", header: token},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty bearer", header: "Bearer   "},
		{name: "garbage", header: "Bearer not-a-jwt", cause: domain.ErrTokenMalformed},
		{name: "expired", header: "Bearer " + expiredToken, cause: domain.ErrTokenExpired},
		{name: "bad signature", header: "Bearer " + forged, cause: domain.ErrTokenBadSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Authenticate(codec, tt.header)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}

	t.Run("valid", func(t *testing.T) {
		claims, err := Authenticate(codec, "bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", claims.SubjectID)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
		assert.True(t, claims.IsVerified)
	})
}

func TestGuards(t *testing.T) {
	adminOnly := Chain(RequireRole(domain.RoleAdmin), RequireVerified)

	tests := []struct {
		name   string
		claims domain.SessionClaims
		want   error
	}{
		{name: "verified admin", claims: domain.SessionClaims{Role: domain.RoleAdmin, IsVerified: true}},
		{name: "verified user", claims: domain.SessionClaims{Role: domain.RoleUser, IsVerified: true}, want: domain.ErrInsufficientRole},
		{name: "unverified admin", claims: domain.SessionClaims{Role: domain.RoleAdmin}, want: domain.ErrEmailNotVerified},
		{name: "unverified user", claims: domain.SessionClaims{Role: domain.RoleUser}, want: domain.ErrInsufficientRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := adminOnly(tt.claims)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChain_Empty(t *testing.T) {
	assert.NoError(t, Chain()(domain.SessionClaims{}))
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFrom(context.Background())
	assert.False(t, ok)

	want := domain.SessionClaims{SubjectID: "acc-1", Role: domain.RoleUser}
	got, ok := ClaimsFrom(WithClaims(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
}
