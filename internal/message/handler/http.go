package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	msgdomain "octagram/backend/internal/message/domain"
	"octagram/backend/internal/message/service"
	"octagram/backend/internal/server/httpx"
	"octagram/backend/internal/server/middleware"
)

// Handler exposes conversation reads over HTTP. Sending happens on the
// messages WebSocket channel.
type Handler struct {
	svc    *service.MessageService
	logger *slog.Logger
}

// NewHandler returns a message Handler backed by svc.
func NewHandler(svc *service.MessageService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the message endpoints on r. All of them require authentication.
func (h *Handler) Routes(r chi.Router, auth *middleware.Auth) {
	r.Use(auth.Require())
	r.Get("/{userID}", h.conversation)
	r.Patch("/{messageID}/read", h.markRead)
}

func (h *Handler) conversation(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	otherID := chi.URLParam(r, "userID")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	msgs, err := h.svc.Conversation(r.Context(), callerID, otherID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, service.ErrUserNotFound)
			return
		}
		h.logger.Error("conversation failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if msgs == nil {
		msgs = []msgdomain.Message{}
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	messageID := chi.URLParam(r, "messageID")

	err := h.svc.MarkRead(r.Context(), callerID, messageID)
	switch {
	case err == nil:
		httpx.WriteMessage(w, http.StatusOK, "Message marked as read")
	case errors.Is(err, service.ErrMessageNotFound):
		httpx.WriteError(w, http.StatusNotFound, service.ErrMessageNotFound)
	case errors.Is(err, service.ErrNotParticipant):
		httpx.WriteError(w, http.StatusForbidden, service.ErrNotParticipant)
	default:
		h.logger.Error("mark read failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
