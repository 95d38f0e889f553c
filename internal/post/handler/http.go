package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	postdomain "octagram/backend/internal/post/domain"
	"octagram/backend/internal/post/service"
	"octagram/backend/internal/server/httpx"
	"octagram/backend/internal/server/middleware"
)

// Handler exposes posts, likes, and comments over HTTP.
type Handler struct {
	svc    *service.PostService
	logger *slog.Logger
}

// NewHandler returns a post Handler backed by svc.
func NewHandler(svc *service.PostService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the post endpoints on r. All of them require authentication.
func (h *Handler) Routes(r chi.Router, auth *middleware.Auth) {
	r.Use(auth.Require())
	r.Post("/", h.create)
	r.Get("/{postID}", h.get)
	r.Delete("/{postID}", h.delete)
	r.Post("/{postID}/like", h.like)
	r.Delete("/{postID}/like", h.unlike)
	r.Get("/{postID}/comments", h.comments)
	r.Post("/{postID}/comments", h.comment)
	r.Get("/user/{userID}", h.listByUser)
}

type createPostRequest struct {
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	var req createPostRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	p, err := h.svc.Create(r.Context(), callerID, req.ImageURL, req.Caption)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.writePostError(w, err, "get post")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error("list posts failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if posts == nil {
		posts = []postdomain.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	err := h.svc.Delete(r.Context(), callerID, chi.URLParam(r, "postID"))
	if err != nil {
		h.writePostError(w, err, "delete post")
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Post deleted")
}

func (h *Handler) like(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	if err := h.svc.Like(r.Context(), callerID, chi.URLParam(r, "postID")); err != nil {
		h.writePostError(w, err, "like post")
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Post liked")
}

func (h *Handler) unlike(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	if err := h.svc.Unlike(r.Context(), callerID, chi.URLParam(r, "postID")); err != nil {
		h.writePostError(w, err, "unlike post")
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Post unliked")
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) comment(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	var req commentRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	c, err := h.svc.Comment(r.Context(), callerID, chi.URLParam(r, "postID"), req.Content)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			httpx.WriteError(w, http.StatusNotFound, service.ErrPostNotFound)
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Comments(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.writePostError(w, err, "list comments")
		return
	}
	if comments == nil {
		comments = []postdomain.Comment{}
	}
	httpx.WriteJSON(w, http.StatusOK, comments)
}

func (h *Handler) writePostError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		httpx.WriteError(w, http.StatusNotFound, service.ErrPostNotFound)
	case errors.Is(err, service.ErrNotOwner):
		httpx.WriteError(w, http.StatusForbidden, service.ErrNotOwner)
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
