package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	return token
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	expired := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	assert.True(t, TokenExpired(expired, now))

	valid := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	assert.False(t, TokenExpired(valid, now))
}

func TestTokenExpiredLeavesJudgmentToBackend(t *testing.T) {
	now := time.Now()

	// No expiry claim: not judged locally.
	assert.False(t, TokenExpired(signedToken(t, jwt.MapClaims{"sub": "7"}), now))

	// Not a JWT at all: not judged locally.
	assert.False(t, TokenExpired("opaque-session-token", now))
	assert.False(t, TokenExpired("", now))
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	assert.Empty(t, store.Token())
	assert.Equal(t, "guest", store.Namespace())
	assert.Nil(t, store.Profile())

	store.Set("tok", nil)
	assert.Equal(t, "tok", store.Token())
	assert.Equal(t, "guest", store.Namespace(), "a token without a profile stays in the guest namespace")

	store.Reset()
	assert.Empty(t, store.Token())
}
