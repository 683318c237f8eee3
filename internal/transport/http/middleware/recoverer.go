package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"crewshift/internal/transport/http/api"
)

func Recoverer(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic", rec).
					Str("requestId", GetRequestID(r.Context())).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", GetRequestID(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
