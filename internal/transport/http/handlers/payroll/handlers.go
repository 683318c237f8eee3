package payrollhandler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/payroll"
	"crewshift/internal/transport/http/api"
	"crewshift/internal/transport/http/middleware"
	"crewshift/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
}

func NewHandler(service *payroll.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleManager, auth.RoleWorker))
		r.Get("/", h.handleList)
		r.Get("/summary", h.handleSummary)
		r.Get("/{payrollID}", h.handleGet)
		r.Get("/{payrollID}/payslip", h.handlePayslip)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := v.Page(r.URL.Query(), 100, 500)
	weekStart := v.OptionalDate("weekStart", r.URL.Query().Get("weekStart"))
	if v.Reject(w, requestID) {
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	records, err := h.Service.List(r.Context(), caller, payroll.Filter{
		WorkerID:  strings.TrimSpace(r.URL.Query().Get("workerId")),
		WeekStart: weekStart,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	anchor := v.OptionalDate("weekStart", r.URL.Query().Get("weekStart"))
	if v.Reject(w, requestID) {
		return
	}
	var at time.Time
	if anchor != nil {
		at = *anchor
	}

	caller, _ := middleware.GetUser(r.Context())
	summary, err := h.Service.WeeklySummary(r.Context(), caller, at)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	rec, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "payrollID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, rec, requestID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	rec, pdf, err := h.Service.Payslip(r.Context(), caller, chi.URLParam(r, "payrollID"))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", rec.WeekStart.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
