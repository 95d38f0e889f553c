package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"octagram/backend/internal/server/httpx"
	"octagram/backend/internal/server/middleware"
	"octagram/backend/internal/user/domain"
	"octagram/backend/internal/user/repository"
)

// profile is the public view of a user. Email and password hash stay private.
type profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

// ownProfile additionally exposes the caller's own email and role.
type ownProfile struct {
	profile
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toProfile(u *domain.User) profile {
	return profile{ID: u.ID, Username: u.Username, Bio: u.Bio, AvatarURL: u.AvatarURL}
}

// Handler exposes user profiles over HTTP.
type Handler struct {
	repo   repository.Repository
	logger *slog.Logger
}

// NewHandler returns a user Handler backed by repo.
func NewHandler(repo repository.Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the user endpoints on r. All of them require authentication.
func (h *Handler) Routes(r chi.Router, auth *middleware.Auth) {
	r.Use(auth.Require())
	r.Get("/me", h.me)
	r.Put("/me", h.updateMe)
	r.Get("/{userID}", h.get)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	u, err := h.repo.GetByID(r.Context(), callerID)
	if err != nil {
		h.logger.Error("get own profile failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if u == nil {
		httpx.WriteError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ownProfile{profile: toProfile(u), Email: u.Email, Role: u.Role})
}

type updateProfileRequest struct {
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	u, err := h.repo.GetByID(r.Context(), callerID)
	if err != nil {
		h.logger.Error("get own profile failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if u == nil {
		httpx.WriteError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}
	if req.Bio != nil {
		u.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if err := h.repo.Update(r.Context(), u); err != nil {
		h.logger.Error("update profile failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ownProfile{profile: toProfile(u), Email: u.Email, Role: u.Role})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error("get profile failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if u == nil {
		httpx.WriteError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(u))
}
