package shared

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/transport/http/api"
)

// Validator collects request-shape issues found before a payload reaches a
// service, such as dates that do not parse.
type Validator struct {
	issues []apperr.FieldIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]apperr.FieldIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, apperr.FieldIssue{Field: strings.TrimSpace(field), Reason: reason})
}

// Date parses a required date.
func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(raw)
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

// OptionalDate returns nil for an empty value.
func (v *Validator) OptionalDate(field, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &parsed
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []apperr.FieldIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]apperr.FieldIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []apperr.FieldIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		apperr.KindValidation.String(),
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}
