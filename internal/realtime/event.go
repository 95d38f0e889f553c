// Package realtime pushes messages and notifications to connected WebSocket
// clients. Each channel (messages, notifications) keeps its own registry of
// user groups, so joining one never leaks events from the other.
package realtime

// Server-to-client event types.
const (
	EventReceiveMessage      = "receiveMessage"
	EventReceiveNotification = "receiveNotification"
	EventError               = "error"
)

// Client-to-server frame types.
const (
	FrameJoin        = "join"
	FrameLeave       = "leave"
	FrameSendMessage = "sendMessage"
)

// Event is a server-to-client frame.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Message string `json:"message"`
}

// ErrorEvent returns an error event with the given message.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Data: ErrorData{Message: message}}
}

// ClientFrame is a client-to-server frame. Fields beyond Type are set
// depending on the frame type.
type ClientFrame struct {
	Type       string `json:"type"`
	UserID     string `json:"userId,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	Content    string `json:"content,omitempty"`
}
