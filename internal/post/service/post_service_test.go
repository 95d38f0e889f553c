package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"octagram/backend/internal/post/domain"
)

type memPostRepo struct {
	mu       sync.Mutex
	posts    map[string]*domain.Post
	likes    map[string]map[string]struct{} // postID -> userIDs
	comments map[string][]domain.Comment
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{
		posts:    make(map[string]*domain.Post),
		likes:    make(map[string]map[string]struct{}),
		comments: make(map[string][]domain.Comment),
	}
}

func (r *memPostRepo) Create(ctx context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p2 := *p
	r.posts[p.ID] = &p2
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id], nil
}

func (r *memPostRepo) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	delete(r.likes, id)
	delete(r.comments, id)
	return nil
}

func (r *memPostRepo) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.likes[postID] == nil {
		r.likes[postID] = make(map[string]struct{})
	}
	if _, ok := r.likes[postID][userID]; ok {
		return false, nil
	}
	r.likes[postID][userID] = struct{}{}
	return true, nil
}

func (r *memPostRepo) RemoveLike(ctx context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes[postID], userID)
	return nil
}

func (r *memPostRepo) CountLikes(ctx context.Context, postID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.likes[postID]), nil
}

func (r *memPostRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.PostID] = append(r.comments[c.PostID], *c)
	return nil
}

func (r *memPostRepo) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comments[postID], nil
}

type notifierCall struct {
	kind        string
	recipientID string
	senderID    string
	postID      string
}

type memNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
}

func (n *memNotifier) CreateLikeNotification(ctx context.Context, recipientID, senderID, postID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifierCall{"like", recipientID, senderID, postID})
	return nil
}

func (n *memNotifier) CreateCommentNotification(ctx context.Context, recipientID, senderID, postID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifierCall{"comment", recipientID, senderID, postID})
	return nil
}

func (n *memNotifier) all() []notifierCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifierCall, len(n.calls))
	copy(out, n.calls)
	return out
}

func newTestPostService() (*PostService, *memNotifier) {
	repo := newMemPostRepo()
	notifier := &memNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostService(repo, notifier, logger), notifier
}

func TestPostService_CreateAndGet(t *testing.T) {
	svc, _ := newTestPostService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "alice", "https://img/1.jpg", "first!")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "alice" || got.Caption != "first!" {
		t.Errorf("post: got %+v", got)
	}

	if _, err := svc.Get(ctx, "missing"); err != ErrPostNotFound {
		t.Errorf("missing post: want ErrPostNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, "alice", "", ""); err == nil {
		t.Error("post without image url: expected error")
	}
}

func TestPostService_LikeNotifies(t *testing.T) {
	svc, notifier := newTestPostService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "alice", "https://img/1.jpg", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Like(ctx, "bob", p.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}

	calls := notifier.all()
	if len(calls) != 1 || calls[0].kind != "like" || calls[0].recipientID != "alice" || calls[0].senderID != "bob" {
		t.Errorf("notifier calls: got %+v", calls)
	}
	n, err := svc.LikeCount(ctx, p.ID)
	if err != nil {
		t.Fatalf("LikeCount: %v", err)
	}
	if n != 1 {
		t.Errorf("like count: got %d, want 1", n)
	}
}

func TestPostService_DoubleLikeDoesNotRenotify(t *testing.T) {
	svc, notifier := newTestPostService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "alice", "https://img/1.jpg", "")
	if err := svc.Like(ctx, "bob", p.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if err := svc.Like(ctx, "bob", p.ID); err != nil {
		t.Fatalf("second Like: %v", err)
	}
	if got := len(notifier.all()); got != 1 {
		t.Errorf("notifier calls: got %d, want 1", got)
	}
	if n, _ := svc.LikeCount(ctx, p.ID); n != 1 {
		t.Errorf("like count: got %d, want 1", n)
	}
}

func TestPostService_Unlike(t *testing.T) {
	svc, _ := newTestPostService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "alice", "https://img/1.jpg", "")
	if err := svc.Like(ctx, "bob", p.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if err := svc.Unlike(ctx, "bob", p.ID); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	if n, _ := svc.LikeCount(ctx, p.ID); n != 0 {
		t.Errorf("like count: got %d, want 0", n)
	}
	// Unliking again is fine.
	if err := svc.Unlike(ctx, "bob", p.ID); err != nil {
		t.Errorf("second Unlike: %v", err)
	}
	if err := svc.Unlike(ctx, "bob", "missing"); err != ErrPostNotFound {
		t.Errorf("unlike missing post: want ErrPostNotFound, got %v", err)
	}
}

func TestPostService_CommentNotifies(t *testing.T) {
	svc, notifier := newTestPostService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "alice", "https://img/1.jpg", "")
	c, err := svc.Comment(ctx, "bob", p.ID, "nice shot")
	if err != nil {
		t.Fatalf("Comment: %v", err)
	}
	if c.UserID != "bob" || c.PostID != p.ID {
		t.Errorf("comment: got %+v", c)
	}

	calls := notifier.all()
	if len(calls) != 1 || calls[0].kind != "comment" || calls[0].recipientID != "alice" {
		t.Errorf("notifier calls: got %+v", calls)
	}

	comments, err := svc.Comments(ctx, p.ID)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("comments: got %d, want 1", len(comments))
	}

	if _, err := svc.Comment(ctx, "bob", p.ID, ""); err == nil {
		t.Error("empty comment: expected error")
	}
	if _, err := svc.Comment(ctx, "bob", "missing", "hi"); err != ErrPostNotFound {
		t.Errorf("comment on missing post: want ErrPostNotFound, got %v", err)
	}
}

func TestPostService_Delete(t *testing.T) {
	svc, _ := newTestPostService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "alice", "https://img/1.jpg", "")
	if err := svc.Delete(ctx, "bob", p.ID); err != ErrNotOwner {
		t.Errorf("delete by non-owner: want ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(ctx, "alice", p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); err != ErrPostNotFound {
		t.Errorf("deleted post: want ErrPostNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "alice", p.ID); err != ErrPostNotFound {
		t.Errorf("delete missing post: want ErrPostNotFound, got %v", err)
	}
}
