package handler

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// VerifyTokenResponse is the body of GET /verify-token.
type VerifyTokenResponse struct {
	Valid bool         `json:"valid"`
	User  *auth.Claims `json:"user"`
}

// AuthHandler handles account and session HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Signup handles POST /signup requests.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "Signup failed", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "Login failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /logout requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), userID, claims.SessionUUID()); err != nil {
		writeServiceError(w, err, "Logout failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Session handles GET /session/{id} requests.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, chi.URLParam(r, "id"), model.ErrSessionNotFound.Message, h.logger)
	if !ok {
		return
	}

	resp, err := h.service.ExchangeSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch session", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// VerifyToken handles GET /verify-token requests.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.CheckSession(r.Context(), userID, claims.SessionUUID()); err != nil {
		writeServiceError(w, err, "Token verification failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, VerifyTokenResponse{Valid: true, User: claims})
}

// Profile handles GET /profile requests.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch profile", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SessionsResponse is the body of GET /sessions.
type SessionsResponse struct {
	Sessions []model.Session `json:"sessions"`
}

// Sessions handles GET /sessions requests.
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	sessions, err := h.service.Sessions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch sessions", h.logger)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}

	writeJSON(w, http.StatusOK, SessionsResponse{Sessions: sessions})
}
