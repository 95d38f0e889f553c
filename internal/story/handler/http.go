package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"octagram/backend/internal/server/httpx"
	"octagram/backend/internal/server/middleware"
	storydomain "octagram/backend/internal/story/domain"
	"octagram/backend/internal/story/service"
)

// Handler exposes stories over HTTP.
type Handler struct {
	svc    *service.StoryService
	logger *slog.Logger
}

// NewHandler returns a story Handler backed by svc.
func NewHandler(svc *service.StoryService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the story endpoints on r. All of them require authentication.
func (h *Handler) Routes(r chi.Router, auth *middleware.Auth) {
	r.Use(auth.Require())
	r.Post("/", h.create)
	r.Get("/{storyID}", h.get)
	r.Delete("/{storyID}", h.delete)
	r.Get("/user/{userID}", h.listByUser)
}

type createStoryRequest struct {
	MediaURL  string `json:"mediaUrl"`
	MediaType string `json:"mediaType"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	var req createStoryRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	st, err := h.svc.Create(r.Context(), callerID, req.MediaURL, req.MediaType)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.Context(), chi.URLParam(r, "storyID"))
	if err != nil {
		h.writeStoryError(w, err, "get story")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	stories, err := h.svc.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error("list stories failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if stories == nil {
		stories = []storydomain.Story{}
	}
	httpx.WriteJSON(w, http.StatusOK, stories)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	err := h.svc.Delete(r.Context(), callerID, chi.URLParam(r, "storyID"))
	if err != nil {
		h.writeStoryError(w, err, "delete story")
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Story deleted")
}

func (h *Handler) writeStoryError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrStoryNotFound):
		httpx.WriteError(w, http.StatusNotFound, service.ErrStoryNotFound)
	case errors.Is(err, service.ErrNotOwner):
		httpx.WriteError(w, http.StatusForbidden, service.ErrNotOwner)
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
