package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"octagram/backend/internal/authz"
	roledomain "octagram/backend/internal/role/domain"
	"octagram/backend/internal/security"
	"octagram/backend/internal/security/securitytest"
	"octagram/backend/internal/server/middleware"
	"octagram/backend/internal/user/domain"
)

type memUserRepo struct {
	mu sync.Mutex
	m  map[string]*domain.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[id]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if u.Username == username {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if u.Email == email {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	r.m[u.ID] = &u2
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	r.m[u.ID] = &u2
	return nil
}

type memRoleStore struct{}

func (memRoleStore) GetByName(ctx context.Context, name string) (*roledomain.Role, error) {
	if name == domain.RoleUser || name == domain.RoleAdmin {
		return &roledomain.Role{ID: name, Name: name}, nil
	}
	return nil, nil
}

func newTestRouter(t *testing.T) (chi.Router, *memUserRepo, *security.TokenProvider) {
	t.Helper()
	repo := &memUserRepo{m: make(map[string]*domain.User)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	provider := securitytest.NewTokenProvider()
	evaluator, err := authz.NewOPAEvaluator()
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	auth := middleware.NewAuth(provider, repo, memRoleStore{}, evaluator, logger)

	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		NewHandler(repo, logger).Routes(r, auth)
	})
	return r, repo, provider
}

func seedUser(t *testing.T, repo *memUserRepo, id, username string) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		Bio:          "hello",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func do(t *testing.T, router http.Handler, method, path, userID string, provider *security.TokenProvider, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, _, err := provider.IssueAccess(userID, userID, domain.RoleUser)
		if err != nil {
			t.Fatalf("IssueAccess: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Me(t *testing.T) {
	router, repo, provider := newTestRouter(t)
	seedUser(t, repo, "u1", "alice")

	rec := do(t, router, http.MethodGet, "/api/users/me", "u1", provider, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if resp["username"] != "alice" {
		t.Errorf("username: got %v, want alice", resp["username"])
	}
	if resp["email"] != "alice@example.com" {
		t.Errorf("own profile should include email, got %v", resp["email"])
	}
}

func TestHandler_PublicProfileHidesEmail(t *testing.T) {
	router, repo, provider := newTestRouter(t)
	seedUser(t, repo, "u1", "alice")
	seedUser(t, repo, "u2", "bob")

	rec := do(t, router, http.MethodGet, "/api/users/u2", "u1", provider, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if resp["username"] != "bob" {
		t.Errorf("username: got %v, want bob", resp["username"])
	}
	if _, ok := resp["email"]; ok {
		t.Error("public profile must not expose email")
	}
	if _, ok := resp["role"]; ok {
		t.Error("public profile must not expose role")
	}
}

func TestHandler_UpdateMe(t *testing.T) {
	router, repo, provider := newTestRouter(t)
	seedUser(t, repo, "u1", "alice")

	rec := do(t, router, http.MethodPut, "/api/users/me", "u1", provider, map[string]string{
		"bio": "  new bio  ",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: got %d, body %s", rec.Code, rec.Body.String())
	}
	u, _ := repo.GetByID(context.Background(), "u1")
	if u.Bio != "new bio" {
		t.Errorf("bio: got %q, want %q", u.Bio, "new bio")
	}
	if u.AvatarURL != "" {
		t.Errorf("avatar should be untouched, got %q", u.AvatarURL)
	}
}

func TestHandler_UnknownUser(t *testing.T) {
	router, repo, provider := newTestRouter(t)
	seedUser(t, repo, "u1", "alice")

	rec := do(t, router, http.MethodGet, "/api/users/missing", "u1", provider, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status: got %d, want 404", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/api/users/u1", "", provider, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status: got %d, want 401", rec.Code)
	}
}
