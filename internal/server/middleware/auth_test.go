package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"octagram/backend/internal/authz"
	roledomain "octagram/backend/internal/role/domain"
	"octagram/backend/internal/security"
	"octagram/backend/internal/security/securitytest"
	userdomain "octagram/backend/internal/user/domain"
)

type memUserStore struct {
	m map[string]*userdomain.User
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return s.m[id], nil
}

type memRoleStore struct {
	m map[string]*roledomain.Role
}

func (s *memRoleStore) GetByName(ctx context.Context, name string) (*roledomain.Role, error) {
	return s.m[name], nil
}

func newTestAuth(t *testing.T) (*Auth, *memUserStore, *memRoleStore) {
	t.Helper()
	users := &memUserStore{m: map[string]*userdomain.User{
		"u1": {ID: "u1", Username: "alice", Role: userdomain.RoleUser},
		"u2": {ID: "u2", Username: "root", Role: userdomain.RoleAdmin},
	}}
	roles := &memRoleStore{m: map[string]*roledomain.Role{
		userdomain.RoleUser:  {ID: "r1", Name: userdomain.RoleUser},
		userdomain.RoleAdmin: {ID: "r2", Name: userdomain.RoleAdmin},
	}}
	evaluator, err := authz.NewOPAEvaluator()
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuth(securitytest.NewTokenProvider(), users, roles, evaluator, logger), users, roles
}

func protectedHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		if !ok || userID != wantUserID {
			t.Errorf("context user id: got %q ok=%v, want %q", userID, ok, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth_RequireValidToken(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	token, _, err := securitytest.NewTokenProvider().IssueAccess("u1", "alice", userdomain.RoleUser)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	h := auth.Require()(protectedHandler(t, "u1"))
	rec := doRequest(h, token)
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuth_RequireMissingToken(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	h := auth.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a token")
	}))
	rec := doRequest(h, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_RequireBadToken(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	h := auth.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with a bad token")
	}))
	rec := doRequest(h, "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_RequireDeletedUser(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	token, _, err := securitytest.NewTokenProvider().IssueAccess("u1", "alice", userdomain.RoleUser)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	delete(users.m, "u1")

	h := auth.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached for a deleted user")
	}))
	rec := doRequest(h, token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_RequireUnknownRole(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	token, _, err := securitytest.NewTokenProvider().IssueAccess("u1", "alice", "Moderator")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	h := auth.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with an unknown role")
	}))
	rec := doRequest(h, token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAuth_RequireRole(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	provider := securitytest.NewTokenProvider()

	userToken, _, err := provider.IssueAccess("u1", "alice", userdomain.RoleUser)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	adminToken, _, err := provider.IssueAccess("u2", "root", userdomain.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	h := auth.Require(userdomain.RoleAdmin)(protectedHandler(t, "u2"))
	if rec := doRequest(h, userToken); rec.Code != http.StatusForbidden {
		t.Errorf("user on admin route: got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if rec := doRequest(h, adminToken); rec.Code != http.StatusOK {
		t.Errorf("admin on admin route: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuth_IdentifyQueryParam(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	token, _, err := securitytest.NewTokenProvider().IssueAccess("u1", "alice", userdomain.RoleUser)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ws/messages?access_token="+token, nil)
	claims, err := auth.Identify(req)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("subject: got %q, want %q", claims.Subject, "u1")
	}

	req = httptest.NewRequest(http.MethodGet, "/ws/messages", nil)
	if _, err := auth.Identify(req); err != security.ErrInvalidToken {
		t.Errorf("no token: want ErrInvalidToken, got %v", err)
	}
}
