package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticValidator struct {
	claims jwt.MapClaims
	err    error
}

func (v *staticValidator) ValidateToken(string) (jwt.MapClaims, error) {
	return v.claims, v.err
}

func identityCapture(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddlewareResolvesIdentity(t *testing.T) {
	validator := &staticValidator{claims: jwt.MapClaims{
		"sub":              "user-1",
		"wallet_address":   "0x1111111111111111111111111111111111111111",
		"twitter_username": "meme_lord",
		"email_verified":   true,
	}}

	var captured *Identity
	handler := Middleware(validator, zap.NewNop())(identityCapture(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", captured.WalletAddress)
	assert.Equal(t, "meme_lord", captured.TwitterUsername)
	assert.True(t, captured.EmailVerified)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := Middleware(&staticValidator{}, zap.NewNop())(identityCapture(new(*Identity)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	validator := &staticValidator{err: errors.New("signature mismatch")}
	handler := Middleware(validator, zap.NewNop())(identityCapture(new(*Identity)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsMissingSubject(t *testing.T) {
	validator := &staticValidator{claims: jwt.MapClaims{"email_verified": true}}
	handler := Middleware(validator, zap.NewNop())(identityCapture(new(*Identity)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireVerifiedEmail(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: "u", EmailVerified: true}))
	rec := httptest.NewRecorder()
	RequireVerifiedEmail(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: "u"}))
	rec = httptest.NewRecorder()
	RequireVerifiedEmail(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guard := RequireAdmin("sekrit")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Token", "sekrit")
	rec := httptest.NewRecorder()
	guard(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	rec = httptest.NewRecorder()
	guard(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// No configured token means no admin access at all.
	disabled := RequireAdmin("")
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Token", "")
	rec = httptest.NewRecorder()
	disabled(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
