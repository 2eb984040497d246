package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/auth"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SigningKey: "test-signing-key"})
}

func authHandler(jwtService *auth.JWTService) http.Handler {
	return middleware.Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(middleware.GetSubject(r.Context())))
	}))
}

func TestAuth_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	token, _, err := jwtService.GenerateToken("ops@airsight.io")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authHandler(jwtService).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@airsight.io", rec.Body.String())
}

func TestAuth_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", http.NoBody)
	rec := httptest.NewRecorder()

	authHandler(newTestJWTService()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuth_MalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", http.NoBody)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	authHandler(newTestJWTService()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization header format")
}

func TestAuth_EmptyBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()

	authHandler(newTestJWTService()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestAuth_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	authHandler(newTestJWTService()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuth_TokenSignedWithDifferentKey(t *testing.T) {
	other := auth.NewJWTService(auth.JWTConfig{SigningKey: "another-key"})
	token, _, err := other.GenerateToken("ops@airsight.io")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authHandler(newTestJWTService()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetSubject_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	assert.Empty(t, middleware.GetSubject(req.Context()))
}
