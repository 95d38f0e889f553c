package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"octagram/backend/internal/auth/service"
	"octagram/backend/internal/server/httpx"
	"octagram/backend/internal/server/middleware"
)

var errTaken = errors.New("Username or email is already taken")

// Handler exposes the auth service over HTTP.
type Handler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewHandler returns an auth Handler backed by svc.
func NewHandler(svc *service.AuthService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the auth endpoints on r. All of them are anonymous except logout.
func (h *Handler) Routes(r chi.Router, auth *middleware.Auth) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.With(auth.Require()).Post("/logout", h.logout)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	_, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusBadRequest, errTaken)
			return
		}
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			httpx.WriteError(w, http.StatusBadRequest, ve)
			return
		}
		h.logger.Error("register failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "User registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	pair, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, service.ErrInvalidCredentials)
			return
		}
		h.logger.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			httpx.WriteError(w, http.StatusUnauthorized, service.ErrInvalidRefreshToken)
			return
		}
		h.logger.Error("refresh failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	if err := h.svc.Logout(r.Context(), userID); err != nil {
		h.logger.Error("logout failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Logged out")
}
