package repository

import (
	"context"

	"octagram/backend/internal/role/domain"
)

// Repository defines persistence for roles.
type Repository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
}
