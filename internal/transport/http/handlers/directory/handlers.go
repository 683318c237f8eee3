package directoryhandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/directory"
	"crewshift/internal/domain/shifts"
	"crewshift/internal/transport/http/api"
	"crewshift/internal/transport/http/middleware"
	"crewshift/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
	Audit   shifts.AuditRecorder
}

func NewHandler(service *directory.Service, audit shifts.AuditRecorder) *Handler {
	return &Handler{Service: service, Audit: audit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manager := middleware.RequireRole(auth.RoleManager)
	r.Route("/quotes", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleClient)).Post("/", h.handleCreateQuote)
		r.With(middleware.RequireRole(auth.RoleClient, auth.RoleManager)).Get("/", h.handleListQuotes)
	})
	r.Route("/jobs", func(r chi.Router) {
		r.With(manager).Post("/", h.handleCreateJob)
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleWorker)).Get("/", h.handleListJobs)
	})
	r.Route("/assignments", func(r chi.Router) {
		r.With(manager).Post("/", h.handleCreateAssignment)
		r.With(middleware.RequireRole(auth.RoleManager, auth.RoleWorker)).Get("/", h.handleListAssignments)
	})
}

func (h *Handler) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload directory.QuoteInput
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	caller, _ := middleware.GetUser(r.Context())
	quote, err := h.Service.CreateQuote(r.Context(), caller, payload)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, quote, requestID)
}

func (h *Handler) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	quotes, err := h.Service.ListQuotes(r.Context(), caller)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, quotes, middleware.GetRequestID(r.Context()))
}

type jobRequest struct {
	QuoteRequestID string           `json:"quoteRequestId"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Location       string           `json:"location"`
	Status         string           `json:"status"`
	StartDate      string           `json:"startDate"`
	EndDate        string           `json:"endDate"`
	EstimatedHours *decimal.Decimal `json:"estimatedHours"`
}

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload jobRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	start := v.OptionalDate("startDate", payload.StartDate)
	end := v.OptionalDate("endDate", payload.EndDate)
	if v.Reject(w, requestID) {
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	job, err := h.Service.CreateJob(r.Context(), caller, directory.JobInput{
		QuoteRequestID: payload.QuoteRequestID,
		Title:          payload.Title,
		Description:    payload.Description,
		Location:       payload.Location,
		Status:         directory.JobStatus(payload.Status),
		StartDate:      start,
		EndDate:        end,
		EstimatedHours: payload.EstimatedHours,
	})
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	h.record(r, caller.ID, "job.create", "job", job.ID, job)
	api.Created(w, job, requestID)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	jobs, err := h.Service.ListJobs(r.Context(), caller)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, jobs, middleware.GetRequestID(r.Context()))
}

type assignmentRequest struct {
	JobID     string `json:"jobId"`
	WorkerID  string `json:"workerId"`
	WeekStart string `json:"weekStart"`
	Notes     string `json:"notes"`
}

func (h *Handler) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload assignmentRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	caller, _ := middleware.GetUser(r.Context())

	in := directory.AssignmentInput{JobID: payload.JobID, WorkerID: payload.WorkerID, Notes: payload.Notes}
	if strings.TrimSpace(payload.WeekStart) != "" {
		v := shared.NewValidator()
		weekStart, _ := v.Date("weekStart", payload.WeekStart)
		if v.Reject(w, requestID) {
			return
		}
		in.WeekStart = weekStart
	}

	assignment, err := h.Service.CreateAssignment(r.Context(), caller, in)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	h.record(r, caller.ID, "assignment.create", "assignment", assignment.ID, assignment)
	api.Created(w, assignment, requestID)
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	assignments, err := h.Service.ListAssignments(r.Context(), caller)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

// record writes an audit event. A failure is logged and does not fail the
// request.
func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID, after); err != nil {
		log.Warn().Err(err).Str("action", action).Str("entityId", entityID).Msg("audit record failed")
	}
}
