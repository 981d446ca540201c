package middleware

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	jwtutil "github.com/unfreeze-app/unfreeze-backend/pkg/jwt"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware validates the Bearer token and stores the claims in the
// request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				log.Warn("Missing or malformed Authorization header")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtutil.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				log.WithError(err).Warn("Token validation failed")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated claims, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(userContextKey).(*jwtutil.Claims)
	return claims
}
