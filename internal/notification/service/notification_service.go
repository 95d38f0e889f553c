package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"octagram/backend/internal/notification/domain"
)

// Sentinel errors for the notification service; the handler maps them to HTTP statuses.
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// NotificationRepo is the minimal notification repository needed by the service.
type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// Publisher pushes a stored notification to the recipient's live connections.
type Publisher interface {
	PublishNotification(ctx context.Context, n *domain.Notification) error
}

const defaultListLimit = 50

// NotificationService creates and reads notifications. Every notification is
// persisted before it is published, so an offline recipient finds it on next
// load; a failed publish is logged and otherwise ignored.
type NotificationService struct {
	repo      NotificationRepo
	publisher Publisher
	logger    *slog.Logger
}

// NewNotificationService returns a NotificationService with the given dependencies.
func NewNotificationService(repo NotificationRepo, publisher Publisher, logger *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, logger: logger}
}

// CreateLikeNotification records that senderID liked recipientID's post.
// Users liking their own posts produce no notification.
func (s *NotificationService) CreateLikeNotification(ctx context.Context, recipientID, senderID, postID string) error {
	return s.create(ctx, recipientID, senderID, domain.TypeLike, postID)
}

// CreateCommentNotification records that senderID commented on recipientID's
// post. Users commenting on their own posts produce no notification.
func (s *NotificationService) CreateCommentNotification(ctx context.Context, recipientID, senderID, postID string) error {
	return s.create(ctx, recipientID, senderID, domain.TypeComment, postID)
}

// CreateFollowNotification records that senderID followed recipientID.
func (s *NotificationService) CreateFollowNotification(ctx context.Context, recipientID, senderID string) error {
	return s.create(ctx, recipientID, senderID, domain.TypeFollow, "")
}

func (s *NotificationService) create(ctx context.Context, recipientID, senderID string, typ domain.Type, targetID string) error {
	if recipientID == senderID {
		// Acting on your own content is not news.
		return nil
	}
	n := &domain.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		TargetID:    targetID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if err := s.publisher.PublishNotification(ctx, n); err != nil {
		s.logger.Warn("notification publish failed", "notification_id", n.ID, "error", err)
	}
	return nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, defaultListLimit)
}

// MarkRead flags a notification as read. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, callerID, notificationID string) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientID != callerID {
		return ErrNotRecipient
	}
	return s.repo.MarkRead(ctx, notificationID)
}

// MarkAllRead flags every unread notification of the caller as read and
// returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, callerID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, callerID)
}
