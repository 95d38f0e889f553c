package repository

import (
	"context"

	"octagram/backend/internal/notification/domain"
)

// Repository defines persistence for notifications.
type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead flags all of the recipient's unread notifications as read
	// and returns how many changed.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}
