package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/auth"
)

func newService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SigningKey: "test-signing-key"})
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := newService()

	token, expiresAt, err := service.GenerateToken("ops@airsight")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(auth.TokenExpiry), expiresAt, time.Minute)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@airsight", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	token, _, err := newService().GenerateToken("ops@airsight")
	require.NoError(t, err)

	other := auth.NewJWTService(auth.JWTConfig{SigningKey: "different-key"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	service := newService()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "airsight",
			Subject:   "ops@airsight",
			Audience:  jwt.ClaimStrings{"airsight-api"},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: "admin",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestJWTService_RejectsNonAdminRole(t *testing.T) {
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "airsight",
			Subject:   "viewer",
			Audience:  jwt.ClaimStrings{"airsight-api"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "viewer",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = newService().ValidateToken(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	_, err := newService().ValidateToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	other := auth.NewJWTService(auth.JWTConfig{SigningKey: "test-signing-key", Issuer: "someone-else"})
	token, _, err := other.GenerateToken("ops@airsight")
	require.NoError(t, err)

	_, err = newService().ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
