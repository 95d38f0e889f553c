package repository

import (
	"context"

	"octagram/backend/internal/token/domain"
)

// Repository defines persistence for refresh tokens.
type Repository interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	// Consume atomically removes the stored token and returns it. A second
	// call with the same value returns nil: replayed tokens are
	// indistinguishable from tokens that never existed.
	Consume(ctx context.Context, token string) (*domain.RefreshToken, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
