package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewshift/internal/domain/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFailErrorStatusAndCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.New(apperr.KindUnauthenticated, "op", "no token"), http.StatusUnauthorized, "unauthenticated"},
		{apperr.New(apperr.KindForbidden, "op", "nope"), http.StatusForbidden, "forbidden"},
		{apperr.New(apperr.KindNotFound, "op", "missing"), http.StatusNotFound, "not_found"},
		{apperr.New(apperr.KindInvalidStateTransition, "op", "decided"), http.StatusConflict, "invalid_state_transition"},
		{apperr.New(apperr.KindInvalidInput, "op", "bad"), http.StatusUnprocessableEntity, "invalid_input"},
		{errors.New("connection reset"), http.StatusInternalServerError, "store_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FailError(rec, tt.err, "req-1")
			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, "req-1", env.RequestID)
		})
	}
}

func TestFailErrorHidesStoreCause(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, apperr.Store("op", errors.New("password=hunter2")), "")
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Equal(t, "internal error", decode(t, rec).Error.Message)
}

func TestFailErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, apperr.Validation("op", []apperr.FieldIssue{{Field: "hoursWorked", Reason: "too many"}}), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []apperr.FieldIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Code)
	require.Len(t, body.Error.Details.Fields, 1)
	assert.Equal(t, "hoursWorked", body.Error.Details.Fields[0].Field)
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"id": "x"}, "req-2")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
}
