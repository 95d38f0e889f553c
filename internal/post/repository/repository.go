package repository

import (
	"context"

	"octagram/backend/internal/post/domain"
)

// Repository defines persistence for posts, likes, and comments.
type Repository interface {
	Create(ctx context.Context, p *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Delete(ctx context.Context, id string) error

	// AddLike records the like and reports whether it was new; liking twice
	// is a no-op that returns false.
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) error
	CountLikes(ctx context.Context, postID string) (int, error)

	AddComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, postID string) ([]domain.Comment, error)
}
