package realtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	msgdomain "octagram/backend/internal/message/domain"
	notifdomain "octagram/backend/internal/notification/domain"
	userdomain "octagram/backend/internal/user/domain"
)

// Dispatcher errors. Handlers surface them to the offending connection as
// error events instead of closing the socket.
var (
	ErrInvalidSender = errors.New("Invalid sender ID")
	ErrUserNotFound  = errors.New("User not found")
)

// UserStore is the minimal user lookup needed by the dispatcher.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// MessageStore persists direct messages before they are pushed.
type MessageStore interface {
	Create(ctx context.Context, m *msgdomain.Message) error
}

// Dispatcher validates, persists, and fans out realtime traffic. A message is
// only pushed after it is stored, so a crash between the two steps loses the
// push but never the message.
type Dispatcher struct {
	users         UserStore
	messages      MessageStore
	messageReg    *Registry
	notifyReg     *Registry
	logger        *slog.Logger
	sentMessages  metric.Int64Counter
	sentNotifies  metric.Int64Counter
	deliverFailed metric.Int64Counter
}

// NewDispatcher returns a Dispatcher using the given stores and registries.
func NewDispatcher(users UserStore, messages MessageStore, messageReg, notifyReg *Registry, logger *slog.Logger, meter metric.Meter) (*Dispatcher, error) {
	sentMessages, err := meter.Int64Counter("realtime.messages.sent")
	if err != nil {
		return nil, err
	}
	sentNotifies, err := meter.Int64Counter("realtime.notifications.sent")
	if err != nil {
		return nil, err
	}
	deliverFailed, err := meter.Int64Counter("realtime.deliveries.failed")
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		users:         users,
		messages:      messages,
		messageReg:    messageReg,
		notifyReg:     notifyReg,
		logger:        logger,
		sentMessages:  sentMessages,
		sentNotifies:  sentNotifies,
		deliverFailed: deliverFailed,
	}, nil
}

// MessageRegistry returns the registry backing the messages channel.
func (d *Dispatcher) MessageRegistry() *Registry { return d.messageReg }

// NotificationRegistry returns the registry backing the notifications channel.
func (d *Dispatcher) NotificationRegistry() *Registry { return d.notifyReg }

// SendDirectMessage stores a direct message and pushes it to every connection
// of both the receiver and the sender. callerID is the authenticated identity
// of the connection making the request; a senderID that differs from it is
// rejected with ErrInvalidSender before anything else is checked.
func (d *Dispatcher) SendDirectMessage(ctx context.Context, callerID, senderID, receiverID, content string) (*msgdomain.Message, error) {
	if senderID == "" || senderID != callerID {
		return nil, ErrInvalidSender
	}
	sender, err := d.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}
	receiver, err := d.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	msg := &msgdomain.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := d.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	event := Event{Type: EventReceiveMessage, Data: msg}
	d.push(ctx, d.messageReg, receiverID, event)
	// Echo to the sender's other connections so every device shows the
	// conversation in the same order.
	d.push(ctx, d.messageReg, senderID, event)
	d.sentMessages.Add(ctx, 1)
	return msg, nil
}

// PublishNotification pushes a stored notification to the recipient's
// connections. A recipient with no connections is not an error; the
// notification is already persisted and will be fetched on next load.
func (d *Dispatcher) PublishNotification(ctx context.Context, n *notifdomain.Notification) error {
	d.push(ctx, d.notifyReg, n.RecipientID, Event{Type: EventReceiveNotification, Data: n})
	d.sentNotifies.Add(ctx, 1)
	return nil
}

func (d *Dispatcher) push(ctx context.Context, reg *Registry, userID string, event Event) {
	for _, conn := range reg.MembersOf(userID) {
		if err := conn.Send(event); err != nil {
			d.logger.Warn("realtime delivery failed",
				"user_id", userID, "conn_id", conn.ID(), "event", event.Type, "error", err)
			d.deliverFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event.Type)))
		}
	}
}
