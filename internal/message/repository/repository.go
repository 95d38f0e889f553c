package repository

import (
	"context"

	"octagram/backend/internal/message/domain"
)

// Repository defines persistence for direct messages.
type Repository interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	// Conversation returns up to limit messages between the two users in
	// both directions, oldest first, skipping the first offset rows.
	Conversation(ctx context.Context, userA, userB string, limit, offset int) ([]domain.Message, error)
	MarkRead(ctx context.Context, id string) error
}
