package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"octagram/backend/internal/post/domain"
)

// Sentinel errors for the post service; the handler maps them to HTTP statuses.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("not the owner of this post")
)

// PostRepo is the post repository interface the service needs.
type PostRepo interface {
	Create(ctx context.Context, p *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) error
	CountLikes(ctx context.Context, postID string) (int, error)
	AddComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, postID string) ([]domain.Comment, error)
}

// Notifier creates notifications for likes and comments. The notification
// service suppresses self-actions, so the post service does not have to.
type Notifier interface {
	CreateLikeNotification(ctx context.Context, recipientID, senderID, postID string) error
	CreateCommentNotification(ctx context.Context, recipientID, senderID, postID string) error
}

// PostService manages posts, likes, and comments.
type PostService struct {
	repo     PostRepo
	notifier Notifier
	logger   *slog.Logger
}

// NewPostService returns a PostService with the given dependencies.
func NewPostService(repo PostRepo, notifier Notifier, logger *slog.Logger) *PostService {
	return &PostService{repo: repo, notifier: notifier, logger: logger}
}

// Create persists a new post for the user.
func (s *PostService) Create(ctx context.Context, userID, imageURL, caption string) (*domain.Post, error) {
	p := &domain.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		ImageURL:  strings.TrimSpace(imageURL),
		Caption:   strings.TrimSpace(caption),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the post, or ErrPostNotFound.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	return p, nil
}

// ListByUser returns the user's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes the caller's post. Deleting someone else's post is ErrNotOwner.
func (s *PostService) Delete(ctx context.Context, callerID, postID string) error {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPostNotFound
	}
	if p.UserID != callerID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, postID)
}

// Like records the caller's like and notifies the post owner. Liking an
// already-liked post changes nothing and sends nothing.
func (s *PostService) Like(ctx context.Context, callerID, postID string) error {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPostNotFound
	}
	added, err := s.repo.AddLike(ctx, postID, callerID)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}
	if err := s.notifier.CreateLikeNotification(ctx, p.UserID, callerID, postID); err != nil {
		s.logger.Warn("like notification failed", "post_id", postID, "error", err)
	}
	return nil
}

// Unlike removes the caller's like.
func (s *PostService) Unlike(ctx context.Context, callerID, postID string) error {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPostNotFound
	}
	return s.repo.RemoveLike(ctx, postID, callerID)
}

// LikeCount returns the number of likes on the post.
func (s *PostService) LikeCount(ctx context.Context, postID string) (int, error) {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, ErrPostNotFound
	}
	return s.repo.CountLikes(ctx, postID)
}

// Comment adds the caller's comment and notifies the post owner.
func (s *PostService) Comment(ctx context.Context, callerID, postID, content string) (*domain.Comment, error) {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	c := &domain.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    callerID,
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	if err := s.notifier.CreateCommentNotification(ctx, p.UserID, callerID, postID); err != nil {
		s.logger.Warn("comment notification failed", "post_id", postID, "error", err)
	}
	return c, nil
}

// Comments returns the post's comments, oldest first.
func (s *PostService) Comments(ctx context.Context, postID string) ([]domain.Comment, error) {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	return s.repo.ListComments(ctx, postID)
}
