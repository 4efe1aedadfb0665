package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := NewAccessToken(userID, "user@example.com", "test-secret", time.Hour)
	require.NoError(t, err)

	claims := &CustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "mentor-backend", claims.Issuer)
}

func TestExpiredTokenFailsValidation(t *testing.T) {
	token, err := NewAccessToken(uuid.New(), "user@example.com", "test-secret", -time.Minute)
	require.NoError(t, err)

	claims := &CustomClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewAccessToken(uuid.New(), "user@example.com", "test-secret", time.Hour)
	require.NoError(t, err)

	claims := &CustomClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestSessionFromContext(t *testing.T) {
	userID := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDKey, userID)
	ctx = context.WithValue(ctx, EmailKey, "user@example.com")

	session, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, "user@example.com", session.Email)

	_, ok = SessionFromContext(context.Background())
	assert.False(t, ok)
}
