package audithandler

import (
	"encoding/csv"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"crewshift/internal/domain/audit"
	"crewshift/internal/domain/auth"
	"crewshift/internal/transport/http/api"
	"crewshift/internal/transport/http/middleware"
	"crewshift/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleManager))
		r.Get("/events", h.handleListEvents)
		r.Get("/events/export", h.handleExportEvents)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	return audit.Filter{
		Action:     strings.TrimSpace(r.URL.Query().Get("action")),
		EntityType: strings.TrimSpace(r.URL.Query().Get("entityType")),
		ActorUser:  strings.TrimSpace(r.URL.Query().Get("actorUserId")),
	}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := v.Page(r.URL.Query(), 100, 500)
	if v.Reject(w, requestID) {
		return
	}
	caller, _ := middleware.GetUser(r.Context())
	events, err := h.Service.List(r.Context(), caller, filterFrom(r), page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, events, requestID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := v.Page(r.URL.Query(), 1000, 5000)
	if v.Reject(w, requestID) {
		return
	}
	caller, _ := middleware.GetUser(r.Context())
	events, err := h.Service.List(r.Context(), caller, filterFrom(r), page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit_events.csv")
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "actorId", "action", "entityType", "entityId", "requestId", "ip", "createdAt"})
	for _, evt := range events {
		_ = writer.Write([]string{
			evt.ID,
			evt.ActorID,
			evt.Action,
			evt.EntityType,
			evt.EntityID,
			evt.RequestID,
			evt.IP,
			evt.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writer.Flush()
}
