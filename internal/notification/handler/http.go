package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	notifdomain "octagram/backend/internal/notification/domain"
	"octagram/backend/internal/notification/service"
	"octagram/backend/internal/server/httpx"
	"octagram/backend/internal/server/middleware"
)

// Handler exposes notification reads over HTTP. Delivery happens on the
// notifications WebSocket channel.
type Handler struct {
	svc    *service.NotificationService
	logger *slog.Logger
}

// NewHandler returns a notification Handler backed by svc.
func NewHandler(svc *service.NotificationService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the notification endpoints on r. All of them require authentication.
func (h *Handler) Routes(r chi.Router, auth *middleware.Auth) {
	r.Use(auth.Require())
	r.Get("/", h.list)
	r.Patch("/read", h.markAllRead)
	r.Patch("/{notificationID}/read", h.markRead)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	notifications, err := h.svc.List(r.Context(), callerID)
	if err != nil {
		h.logger.Error("list notifications failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if notifications == nil {
		notifications = []notifdomain.Notification{}
	}
	httpx.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	notificationID := chi.URLParam(r, "notificationID")

	err := h.svc.MarkRead(r.Context(), callerID, notificationID)
	switch {
	case err == nil:
		httpx.WriteMessage(w, http.StatusOK, "Notification marked as read")
	case errors.Is(err, service.ErrNotificationNotFound):
		httpx.WriteError(w, http.StatusNotFound, service.ErrNotificationNotFound)
	case errors.Is(err, service.ErrNotRecipient):
		httpx.WriteError(w, http.StatusForbidden, service.ErrNotRecipient)
	default:
		h.logger.Error("mark notification read failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	if _, err := h.svc.MarkAllRead(r.Context(), callerID); err != nil {
		h.logger.Error("mark all notifications read failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Notifications marked as read")
}
