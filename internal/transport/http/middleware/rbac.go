package middleware

import (
	"net/http"

	"crewshift/internal/domain/auth"
	"crewshift/internal/transport/http/api"
)

// RequireRole gates routes that have no service call of their own, such as
// the metrics snapshot.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := GetUser(r.Context())
			if _, err := auth.Authorize(user, roles...); err != nil {
				api.FailError(w, err, GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
