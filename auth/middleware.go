package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/config"
)

// contextKey is a private type so the user-id context key cannot collide with
// keys from other packages.
type contextKey string

const userIDKey contextKey = "userID"

// RequireToken returns middleware that verifies the Authorization bearer token
// and stores the authenticated user id in the request context.
func RequireToken(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
				return
			}

			claims, err := VerifyToken(parts[1], cfg.JWTSecret)
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("invalid token", err))
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("invalid token subject", err))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user id set by RequireToken.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
