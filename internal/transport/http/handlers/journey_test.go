package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewshift/internal/app/server"
	"crewshift/internal/platform/config"
)

const seedPassword = "ChangeMe123!"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "1000")
	t.Setenv("SEED_MANAGER_EMAIL", "manager@test.local")
	t.Setenv("SEED_WORKER_EMAIL", "worker@test.local")
	t.Setenv("SEED_CLIENT_EMAIL", "client@test.local")
	t.Setenv("SEED_PASSWORD", seedPassword)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	app, err := server.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	status, raw, _ := callRaw(t, ts, method, path, token, body)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return status, env
}

func callRaw(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, []byte, http.Header) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw, resp.Header
}

func login(t *testing.T, ts *httptest.Server, email string) session {
	t.Helper()
	status, env := call(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": seedPassword,
	})
	require.Equal(t, http.StatusOK, status)
	var s session
	require.NoError(t, json.Unmarshal(env.Data, &s))
	require.NotEmpty(t, s.Token)
	return s
}

// create posts body and returns the id of the created resource.
func create(t *testing.T, ts *httptest.Server, path, token string, body any) string {
	t.Helper()
	status, env := call(t, ts, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusCreated, status, "error: %+v", env.Error)
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

type actors struct {
	manager, worker, client session
}

func loginAll(t *testing.T, ts *httptest.Server) actors {
	t.Helper()
	return actors{
		manager: login(t, ts, "manager@test.local"),
		worker:  login(t, ts, "worker@test.local"),
		client:  login(t, ts, "client@test.local"),
	}
}

// submittedShift walks quote, job and assignment to a fresh SUBMITTED shift.
func submittedShift(t *testing.T, ts *httptest.Server, a actors, hours string) string {
	t.Helper()
	quoteID := create(t, ts, "/api/v1/quotes", a.client.Token, map[string]any{
		"title":       "Fence repair",
		"description": "Replace the broken fence panels along the east side",
	})
	jobID := create(t, ts, "/api/v1/jobs", a.manager.Token, map[string]any{
		"quoteRequestId": quoteID,
		"title":          "Fence repair",
		"description":    "Replace the broken fence panels along the east side",
		"location":       "4 Mill Lane",
		"startDate":      "2024-03-11",
		"endDate":        "2024-03-15",
	})
	assignmentID := create(t, ts, "/api/v1/assignments", a.manager.Token, map[string]any{
		"jobId":     jobID,
		"workerId":  a.worker.User.ID,
		"weekStart": "2024-03-13",
	})
	return create(t, ts, "/api/v1/shifts", a.worker.Token, map[string]any{
		"assignmentId": assignmentID,
		"date":         "2024-03-13",
		"hoursWorked":  hours,
		"photoUris":    []string{"https://photos.example.com/site-1.jpg"},
	})
}

func TestQuoteToPayrollJourney(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)
	assert.Equal(t, "WORKER", a.worker.User.Role)

	shiftID := submittedShift(t, ts, a, "10")

	status, env := call(t, ts, http.MethodPatch, "/api/v1/shifts/"+shiftID, a.worker.Token, map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", env.Error.Code)

	status, env = call(t, ts, http.MethodPatch, "/api/v1/shifts/"+shiftID, a.manager.Token, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, status, "error: %+v", env.Error)
	var decided struct {
		Status       string `json:"status"`
		ApprovedByID string `json:"approvedById"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &decided))
	assert.Equal(t, "APPROVED", decided.Status)
	assert.Equal(t, a.manager.User.ID, decided.ApprovedByID)

	status, env = call(t, ts, http.MethodGet, "/api/v1/payroll", a.worker.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var records []struct {
		ID          string          `json:"id"`
		ShiftID     string          `json:"shiftId"`
		WeekStart   string          `json:"weekStart"`
		TotalAmount decimal.Decimal `json:"totalAmount"`
		WorkerEmail string          `json:"workerEmail"`
		JobTitle    string          `json:"jobTitle"`
		JobLocation string          `json:"jobLocation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, shiftID, records[0].ShiftID)
	assert.Equal(t, "worker@test.local", records[0].WorkerEmail)
	assert.Equal(t, "Fence repair", records[0].JobTitle)
	assert.Equal(t, "4 Mill Lane", records[0].JobLocation)
	assert.Equal(t, "150.00", records[0].TotalAmount.StringFixed(2))
	assert.True(t, strings.HasPrefix(records[0].WeekStart, "2024-03-11"))

	status, env = call(t, ts, http.MethodGet, "/api/v1/payroll/summary?weekStart=2024-03-14", a.manager.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalAmount decimal.Decimal `json:"totalAmount"`
		Workers     []struct {
			WorkerID string `json:"workerId"`
		} `json:"workers"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "150.00", summary.TotalAmount.StringFixed(2))
	require.Len(t, summary.Workers, 1)
	assert.Equal(t, a.worker.User.ID, summary.Workers[0].WorkerID)

	status, pdf, header := callRaw(t, ts, http.MethodGet, "/api/v1/payroll/"+records[0].ID+"/payslip", a.worker.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/pdf", header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	status, env = call(t, ts, http.MethodGet, "/api/v1/audit/events?action=shift.approve", a.manager.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var events []struct {
		EntityID string `json:"entityId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, shiftID, events[0].EntityID)
}

func TestSecondDecisionConflicts(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)
	shiftID := submittedShift(t, ts, a, "16")

	status, _ := call(t, ts, http.MethodPatch, "/api/v1/shifts/"+shiftID, a.manager.Token, map[string]string{"status": "REJECTED"})
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, ts, http.MethodPatch, "/api/v1/shifts/"+shiftID, a.manager.Token, map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state_transition", env.Error.Code)

	status, env = call(t, ts, http.MethodGet, "/api/v1/payroll", a.manager.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var records []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Empty(t, records)
}

func TestShiftListAndVisibility(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)
	shiftID := submittedShift(t, ts, a, "8")

	status, env := call(t, ts, http.MethodGet, "/api/v1/shifts?status=submitted", a.worker.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var subs []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, shiftID, subs[0].ID)

	status, env = call(t, ts, http.MethodGet, "/api/v1/shifts?status=paused", a.manager.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error.Code)

	status, env = call(t, ts, http.MethodGet, "/api/v1/shifts?limit=-5", a.manager.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(env.Error.Details), `"field":"limit"`)

	status, _ = call(t, ts, http.MethodGet, "/api/v1/shifts/"+shiftID, a.client.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, ts, http.MethodGet, "/api/v1/shifts/missing", a.manager.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnauthenticatedRequests(t *testing.T) {
	ts := newTestServer(t)

	status, env := call(t, ts, http.MethodGet, "/api/v1/shifts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthenticated", env.Error.Code)

	status, _ = call(t, ts, http.MethodGet, "/api/v1/payroll", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = call(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "manager@test.local",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthenticated", env.Error.Code)
}

func TestRoleCheckedBeforeBody(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{name: "anonymous submit with bad date", method: http.MethodPost, path: "/api/v1/shifts", body: map[string]any{"date": "bad"}, status: http.StatusUnauthorized, code: "unauthenticated"},
		{name: "anonymous decide with truncated body", method: http.MethodPatch, path: "/api/v1/shifts/x", body: `{"status":`, status: http.StatusUnauthorized, code: "unauthenticated"},
		{name: "client decide with truncated body", method: http.MethodPatch, path: "/api/v1/shifts/x", token: a.client.Token, body: `{"status":`, status: http.StatusForbidden, code: "forbidden"},
		{name: "client submit with bad date", method: http.MethodPost, path: "/api/v1/shifts", token: a.client.Token, body: map[string]any{"date": "bad"}, status: http.StatusForbidden, code: "forbidden"},
		{name: "worker decide with bad status", method: http.MethodPatch, path: "/api/v1/shifts/x", token: a.worker.Token, body: map[string]any{"status": "PAUSED"}, status: http.StatusForbidden, code: "forbidden"},
		{name: "client list with bad status", method: http.MethodGet, path: "/api/v1/shifts?status=paused", token: a.client.Token, status: http.StatusForbidden, code: "forbidden"},
		{name: "client payroll with bad week", method: http.MethodGet, path: "/api/v1/payroll?weekStart=bad", token: a.client.Token, status: http.StatusForbidden, code: "forbidden"},
		{name: "anonymous summary with bad week", method: http.MethodGet, path: "/api/v1/payroll/summary?weekStart=bad", status: http.StatusUnauthorized, code: "unauthenticated"},
		{name: "worker job with bad dates", method: http.MethodPost, path: "/api/v1/jobs", token: a.worker.Token, body: map[string]any{"startDate": "bad"}, status: http.StatusForbidden, code: "forbidden"},
		{name: "client assignment with bad week", method: http.MethodPost, path: "/api/v1/assignments", token: a.client.Token, body: map[string]any{"weekStart": "bad"}, status: http.StatusForbidden, code: "forbidden"},
		{name: "manager quote with unknown field", method: http.MethodPost, path: "/api/v1/quotes", token: a.manager.Token, body: `{"nope":1}`, status: http.StatusForbidden, code: "forbidden"},
		{name: "worker audit with bad range", method: http.MethodGet, path: "/api/v1/audit/events?limit=bad", token: a.worker.Token, status: http.StatusForbidden, code: "forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, ts, tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, tt.status, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{name: "malformed date", body: map[string]any{"assignmentId": "x", "date": "13/03/2024", "hoursWorked": "8", "photoUris": []string{"https://p.example.com/a.jpg"}}, field: "date"},
		{name: "unknown field", body: `{"assignmentId":"x","date":"2024-03-13","hours":8}`, field: "body"},
		{name: "too many hours", body: map[string]any{"assignmentId": "x", "date": "2024-03-13", "hoursWorked": "24.5", "photoUris": []string{"https://p.example.com/a.jpg"}}, field: "hoursWorked"},
		{name: "no photos", body: map[string]any{"assignmentId": "x", "date": "2024-03-13", "hoursWorked": "8", "photoUris": []string{}}, field: "photoUris"},
		{name: "sub-cent hours", body: map[string]any{"assignmentId": "x", "date": "2024-03-13", "hoursWorked": "0.001", "photoUris": []string{"https://p.example.com/a.jpg"}}, field: "hoursWorked"},
		{name: "three decimal hours", body: map[string]any{"assignmentId": "x", "date": "2024-03-13", "hoursWorked": "7.999", "photoUris": []string{"https://p.example.com/a.jpg"}}, field: "hoursWorked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, ts, http.MethodPost, "/api/v1/shifts", a.worker.Token, tt.body)
			require.Equal(t, http.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, "validation_error", env.Error.Code)
			assert.Contains(t, string(env.Error.Details), `"field":"`+tt.field+`"`)
		})
	}
}

func TestOpsEndpoints(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)

	status, raw, _ := callRaw(t, ts, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(raw))

	status, _, _ = callRaw(t, ts, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, ts, http.MethodGet, "/metrics", a.worker.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := call(t, ts, http.MethodGet, "/metrics", a.manager.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "shiftsSubmittedTotal")
}

func TestAuditExportAndCreationEvents(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)
	submittedShift(t, ts, a, "8")

	status, raw, header := callRaw(t, ts, http.MethodGet, "/api/v1/audit/events/export?entityType=assignment", a.manager.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "text/csv", header.Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,actorId,action"))
	assert.Contains(t, lines[1], "assignment.create")

	status, _ = call(t, ts, http.MethodGet, "/api/v1/audit/events", a.worker.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCurrentUser(t *testing.T) {
	ts := newTestServer(t)
	a := loginAll(t, ts)

	status, env := call(t, ts, http.MethodGet, "/api/v1/auth/me", a.client.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, a.client.User.ID, me.ID)
	assert.Equal(t, "client@test.local", me.Email)
	assert.Equal(t, "CLIENT", me.Role)
	assert.NotContains(t, string(env.Data), "passwordHash")

	status, _ = call(t, ts, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
