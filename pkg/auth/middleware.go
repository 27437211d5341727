package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
	apphttp "github.com/attnlabs/viral-middleware/pkg/app/http"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// Middleware authenticates requests with a bearer token from the identity
// provider and places the resolved Identity into the request context.
func Middleware(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "missing bearer token"))
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid token"))
				return
			}

			identity, err := identityFromClaims(claims)
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "incomplete identity claims"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireVerifiedEmail rejects requests whose identity has no verified email.
// Must run after Middleware.
func RequireVerifiedEmail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if verified, _ := EmailVerifiedFromContext(r.Context()); !verified {
			apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(nil, "email verification required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates operator endpoints behind a shared token passed in the
// X-Admin-Token header. An empty configured token disables the endpoints.
func RequireAdmin(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" {
				apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(nil, "admin endpoints disabled"))
				return
			}
			got := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(adminToken)) != 1 {
				apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(nil, "invalid admin token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}

	identity := &Identity{UserID: sub}
	if wallet, ok := claims["wallet_address"].(string); ok {
		identity.WalletAddress = NormalizeAddress(wallet)
	}
	if twitter, ok := claims["twitter_username"].(string); ok {
		identity.TwitterUsername = twitter
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	return identity, nil
}
