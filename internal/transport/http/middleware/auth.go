package middleware

import (
	"context"
	"net/http"
	"strings"

	"crewshift/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth attaches the bearer token's identity to the request context. Requests
// without a valid token pass through anonymous; services reject them.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), identity)))
		})
	}
}

func WithUser(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyUser, &identity)
}

// GetUser returns the caller, or nil and false for anonymous requests.
func GetUser(ctx context.Context) (*auth.Identity, bool) {
	user, ok := ctx.Value(ctxKeyUser).(*auth.Identity)
	return user, ok && user != nil
}
