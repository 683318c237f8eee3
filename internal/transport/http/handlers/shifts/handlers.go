package shiftshandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/shifts"
	"crewshift/internal/transport/http/api"
	"crewshift/internal/transport/http/middleware"
	"crewshift/internal/transport/http/shared"
)

type Handler struct {
	Service *shifts.Service
}

func NewHandler(service *shifts.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/shifts", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleWorker)).Post("/", h.handleSubmit)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleManager, auth.RoleWorker))
			r.Get("/", h.handleList)
			r.Get("/{shiftID}", h.handleGet)
		})
		r.With(middleware.RequireRole(auth.RoleManager)).Patch("/{shiftID}", h.handleDecide)
	})
}

type submitRequest struct {
	AssignmentID string          `json:"assignmentId"`
	Date         string          `json:"date"`
	HoursWorked  decimal.Decimal `json:"hoursWorked"`
	PhotoURIs    []string        `json:"photoUris"`
	Notes        string          `json:"notes"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload submitRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, requestID) {
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	sub, err := h.Service.Submit(r.Context(), caller, shifts.SubmitInput{
		AssignmentID: payload.AssignmentID,
		Date:         date,
		HoursWorked:  payload.HoursWorked,
		PhotoURIs:    payload.PhotoURIs,
		Notes:        payload.Notes,
	})
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, sub, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := v.Page(r.URL.Query(), 100, 500)
	filter := shifts.Filter{
		WorkerID: strings.TrimSpace(r.URL.Query().Get("workerId")),
		Status:   shifts.Status(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	switch filter.Status {
	case "", shifts.StatusSubmitted, shifts.StatusApproved, shifts.StatusRejected:
	default:
		v.Add("status", "status must be one of [SUBMITTED APPROVED REJECTED]")
	}
	if v.Reject(w, requestID) {
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	subs, err := h.Service.List(r.Context(), caller, filter)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, subs, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	sub, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "shiftID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, sub, requestID)
}

type decideRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload decideRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	decision := shifts.Status(strings.ToUpper(strings.TrimSpace(payload.Status)))
	sub, err := h.Service.Decide(r.Context(), caller, chi.URLParam(r, "shiftID"), decision)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, sub, requestID)
}
