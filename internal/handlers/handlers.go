package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/cx-tal-miterani/travel-desk/internal/service"
	"github.com/cx-tal-miterani/travel-desk/internal/session"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	admin service.AdminService
	auth  service.AuthService
	log   logger.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(admin service.AdminService, auth service.AuthService, log logger.Logger) *Handler {
	return &Handler{
		admin: admin,
		auth:  auth,
		log:   log,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// discarded reports whether the client went away; nothing is written then
func (h *Handler) discarded(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		h.log.Debug("request abandoned", "path", r.URL.Path, "error", err)
		return true
	}
	return false
}

// respondServiceError maps service and gateway errors onto status codes
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if h.discarded(r) {
		return
	}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, gateway.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, gateway.ErrInvalidCredentials), errors.Is(err, gateway.ErrSessionExpired):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, gateway.ErrWeakPassword):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": map[string]string{"password": err.Error()},
		})
	case errors.Is(err, gateway.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func ownerID(r *http.Request) string {
	return session.FromContext(r.Context()).OwnerID()
}

// queryList collects a repeated query parameter, also splitting comma separated values
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// --- Session ---

// LoginView handles GET /login. Signed-in operators are not redirected away.
func (h *Handler) LoginView(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": s.State == session.Authenticated,
		"state":         s.State.String(),
		"user":          s.User,
	})
}

// SignIn handles POST /login
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.auth.SignIn(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	setSessionCookie(w, resp.Session)
	respondJSON(w, http.StatusOK, resp)
}

// SignUp handles POST /signup
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.auth.SignUp(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	setSessionCookie(w, resp.Session)
	respondJSON(w, http.StatusCreated, resp)
}

// SignOut handles POST /logout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), session.TokenFromRequest(r)); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

func setSessionCookie(w http.ResponseWriter, s *models.AuthSession) {
	if s == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// --- Dashboard ---

// Dashboard handles GET /
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.admin.Dashboard(r.Context(), ownerID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// --- Clients ---

// ListClients handles GET /clients?q=&toggle=
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.ListClients(r.Context(), ownerID(r), r.URL.Query().Get("q"), queryList(r, "toggle"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// ClientForm handles GET /clients/new
func (h *Handler) ClientForm(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"defaults": models.ClientInput{},
	})
}

// CreateClient handles POST /clients/new
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var input models.ClientInput
	if !decode(w, r, &input) {
		return
	}

	client, err := h.admin.CreateClient(r.Context(), ownerID(r), &input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// GetClient handles GET /client/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	details, err := h.admin.GetClientDetails(r.Context(), ownerID(r), clientID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// UpdateClient handles PUT /client/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	var input models.ClientInput
	if !decode(w, r, &input) {
		return
	}

	client, err := h.admin.UpdateClient(r.Context(), ownerID(r), clientID, &input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// DeleteClient handles DELETE /client/{id}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	if err := h.admin.DeleteClient(r.Context(), ownerID(r), clientID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment handles POST /client/{id}/payments
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["id"]

	var req models.RecordPaymentRequest
	if !decode(w, r, &req) {
		return
	}

	payment, err := h.admin.RecordPayment(r.Context(), ownerID(r), clientID, &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

// --- Flights ---

// ListFlights handles GET /flights?q=&status=&payment=
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	list, err := h.admin.ListFlights(r.Context(), ownerID(r),
		r.URL.Query().Get("q"), queryList(r, "status"), queryList(r, "payment"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// FlightForm handles GET /flights/new
func (h *Handler) FlightForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.admin.NewFlightForm(r.Context(), ownerID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusOK, form)
}

// CreateFlight handles POST /flights/new
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFlightRequest
	if !decode(w, r, &req) {
		return
	}

	flight, err := h.admin.CreateFlight(r.Context(), ownerID(r), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if h.discarded(r) {
		return
	}
	respondJSON(w, http.StatusCreated, flight)
}
