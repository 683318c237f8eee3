package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingMetrics struct {
	statuses []int
}

func (m *countingMetrics) Record(status int, _ time.Duration) {
	m.statuses = append(m.statuses, status)
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	metrics := &countingMetrics{}
	handler := Logger(zerolog.New(&buf), metrics)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/api/v1/shifts/s1", nil))

	if len(metrics.statuses) != 1 || metrics.statuses[0] != http.StatusConflict {
		t.Fatalf("unexpected recorded statuses: %v", metrics.statuses)
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if line["path"] != "/api/v1/shifts/s1" || line["status"] != float64(409) {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
