package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// StatusRecorder receives each finished request's status and duration.
type StatusRecorder interface {
	Record(status int, duration time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.wroteHeader = true
	}
	return s.ResponseWriter.Write(b)
}

// Logger writes one access log line per request. metrics may be nil.
func Logger(log zerolog.Logger, metrics StatusRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			elapsed := time.Since(start)

			if metrics != nil {
				metrics.Record(recorder.status, elapsed)
			}

			event := log.Info()
			if recorder.status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Int64("durationMs", elapsed.Milliseconds()).
				Str("requestId", GetRequestID(r.Context())).
				Msg("request")
		})
	}
}
