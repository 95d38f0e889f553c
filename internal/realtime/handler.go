package realtime

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"octagram/backend/internal/security"
)

// Authenticator resolves the claims for an incoming WebSocket request.
type Authenticator interface {
	Identify(r *http.Request) (*security.AccessClaims, error)
}

// ChannelHandler upgrades HTTP requests to WebSocket connections on one
// channel and runs their read loops. The messages channel additionally
// accepts sendMessage frames; the notifications channel is push-only.
type ChannelHandler struct {
	name       string
	registry   *Registry
	dispatcher *Dispatcher
	auth       Authenticator
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewMessageChannelHandler returns the handler for /ws/messages.
func NewMessageChannelHandler(d *Dispatcher, auth Authenticator, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{
		name:       "messages",
		registry:   d.MessageRegistry(),
		dispatcher: d,
		auth:       auth,
		logger:     logger,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// NewNotificationChannelHandler returns the handler for /ws/notifications.
func NewNotificationChannelHandler(d *Dispatcher, auth Authenticator, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{
		name:     "notifications",
		registry: d.NotificationRegistry(),
		auth:     auth,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// ServeHTTP authenticates the request, upgrades it, and serves frames until
// the client goes away. The connection is reaped from every joined group on
// exit.
func (h *ChannelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.auth.Identify(r)
	if err != nil {
		http.Error(w, "missing or invalid authorization", http.StatusUnauthorized)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	conn := newWSConn(uuid.New().String(), ws)
	go conn.writePump()
	h.logger.Info("websocket connected", "channel", h.name, "conn_id", conn.ID(), "user_id", claims.Subject)

	defer func() {
		h.registry.Drop(conn.ID())
		conn.close()
		h.logger.Info("websocket disconnected", "channel", h.name, "conn_id", conn.ID(), "user_id", claims.Subject)
	}()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame ClientFrame
		if err := ws.ReadJSON(&frame); err != nil {
			return
		}
		h.handleFrame(r, claims, conn, frame)
	}
}

func (h *ChannelHandler) handleFrame(r *http.Request, claims *security.AccessClaims, conn *wsConn, frame ClientFrame) {
	switch frame.Type {
	case FrameJoin:
		// A connection may only join the group of the user it authenticated
		// as; anything else would let it read someone else's traffic.
		if frame.UserID != claims.Subject {
			_ = conn.Send(ErrorEvent("Invalid sender ID"))
			return
		}
		h.registry.Join(frame.UserID, conn)
	case FrameLeave:
		h.registry.Leave(frame.UserID, conn.ID())
	case FrameSendMessage:
		if h.dispatcher == nil {
			_ = conn.Send(ErrorEvent("unsupported frame type"))
			return
		}
		_, err := h.dispatcher.SendDirectMessage(r.Context(), claims.Subject, frame.SenderID, frame.ReceiverID, frame.Content)
		if err != nil {
			if errors.Is(err, ErrInvalidSender) || errors.Is(err, ErrUserNotFound) {
				_ = conn.Send(ErrorEvent(err.Error()))
				return
			}
			h.logger.Error("send message failed", "conn_id", conn.ID(), "error", err)
			_ = conn.Send(ErrorEvent("internal error"))
		}
	default:
		_ = conn.Send(ErrorEvent("unsupported frame type"))
	}
}
