package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"octagram/backend/internal/story/domain"
)

// Sentinel errors for the story service; the handler maps them to HTTP statuses.
var (
	ErrStoryNotFound = errors.New("story not found")
	ErrNotOwner      = errors.New("not the owner of this story")
)

// storyTTL is how long a story stays visible after creation.
const storyTTL = 24 * time.Hour

// StoryRepo is the story repository interface the service needs.
type StoryRepo interface {
	Create(ctx context.Context, s *domain.Story) error
	GetByID(ctx context.Context, id string) (*domain.Story, error)
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Story, error)
	Delete(ctx context.Context, id string) error
}

// StoryService manages ephemeral stories.
type StoryService struct {
	repo   StoryRepo
	logger *slog.Logger
	now    func() time.Time
}

// NewStoryService returns a StoryService with the given dependencies.
func NewStoryService(repo StoryRepo, logger *slog.Logger) *StoryService {
	return &StoryService{repo: repo, logger: logger, now: time.Now}
}

// Create persists a new story for the user, expiring a fixed window from now.
// Media upload happens elsewhere; the service stores the resulting URL.
func (s *StoryService) Create(ctx context.Context, userID, mediaURL, mediaType string) (*domain.Story, error) {
	now := s.now().UTC()
	st := &domain.Story{
		ID:        uuid.New().String(),
		UserID:    userID,
		MediaURL:  strings.TrimSpace(mediaURL),
		MediaType: mediaType,
		CreatedAt: now,
		ExpiresAt: now.Add(storyTTL),
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Get returns the story, or ErrStoryNotFound. Expired stories are gone.
func (s *StoryService) Get(ctx context.Context, id string) (*domain.Story, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil || st.Expired(s.now().UTC()) {
		return nil, ErrStoryNotFound
	}
	return st, nil
}

// ListByUser returns the user's currently visible stories, oldest first.
func (s *StoryService) ListByUser(ctx context.Context, userID string) ([]domain.Story, error) {
	return s.repo.ListActiveByUser(ctx, userID, s.now().UTC())
}

// Delete removes the caller's story. Deleting someone else's story is
// ErrNotOwner; an already-expired story still belongs to its owner and may
// be deleted.
func (s *StoryService) Delete(ctx context.Context, callerID, storyID string) error {
	st, err := s.repo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if st == nil {
		return ErrStoryNotFound
	}
	if st.UserID != callerID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, storyID)
}
