package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"crewshift/internal/domain/apperr"
)

// DecodeJSON reads one JSON object from the body into dst, rejecting unknown
// fields. It writes the error response itself and reports false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			FailValidation(w, requestID, []apperr.FieldIssue{{Field: "body", Reason: "request body too large"}})
			return false
		}
		if errors.Is(err, io.EOF) {
			FailValidation(w, requestID, []apperr.FieldIssue{{Field: "body", Reason: "request body is required"}})
			return false
		}
		FailValidation(w, requestID, []apperr.FieldIssue{{Field: "body", Reason: "invalid JSON body"}})
		return false
	}
	return true
}
