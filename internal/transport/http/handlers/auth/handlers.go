package authhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crewshift/internal/domain/auth"
	"crewshift/internal/transport/http/api"
	"crewshift/internal/transport/http/middleware"
	"crewshift/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Get("/me", h.HandleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	session, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, session, requestID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	identity, err := auth.Authorize(caller, auth.RoleManager, auth.RoleWorker, auth.RoleClient)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	user, err := h.Service.Store.FindUserByID(r.Context(), identity.ID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, user, requestID)
}
