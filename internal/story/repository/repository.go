package repository

import (
	"context"
	"time"

	"octagram/backend/internal/story/domain"
)

// Repository defines persistence for stories.
type Repository interface {
	Create(ctx context.Context, s *domain.Story) error
	GetByID(ctx context.Context, id string) (*domain.Story, error)

	// ListActiveByUser returns the user's stories that have not expired as
	// of now, oldest first.
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Story, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
