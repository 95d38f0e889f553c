package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"octagram/backend/internal/authz"
	roledomain "octagram/backend/internal/role/domain"
	"octagram/backend/internal/security"
	"octagram/backend/internal/server/httpx"
	userdomain "octagram/backend/internal/user/domain"
)

const bearerPrefix = "bearer "

// UserStore is the minimal user lookup needed by the auth middleware.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// RoleStore is the minimal role lookup needed by the auth middleware.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (*roledomain.Role, error)
}

// Auth validates Bearer access tokens and enforces role requirements.
// A syntactically valid token is not enough: the role it names must still
// exist and the user it names must still exist, so deleted accounts and
// retired roles lose access before their tokens expire.
type Auth struct {
	tokens    *security.TokenProvider
	users     UserStore
	roles     RoleStore
	evaluator authz.Evaluator
	logger    *slog.Logger
}

// NewAuth returns an Auth middleware with the given dependencies.
func NewAuth(tokens *security.TokenProvider, users UserStore, roles RoleStore, evaluator authz.Evaluator, logger *slog.Logger) *Auth {
	return &Auth{tokens: tokens, users: users, roles: roles, evaluator: evaluator, logger: logger}
}

// Require returns middleware that admits only authenticated callers whose
// role is one of requiredRoles. With no arguments any authenticated caller
// passes. On success the request context carries the caller's identity.
func (a *Auth) Require(requiredRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, errors.New("missing or invalid authorization"))
				return
			}
			claims, err := a.tokens.ValidateAccess(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, errors.New("missing or invalid authorization"))
				return
			}

			ctx := r.Context()
			role, err := a.roles.GetByName(ctx, claims.Role)
			if err != nil {
				a.logger.Error("role lookup failed", "error", err)
				httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
				return
			}
			if role == nil {
				httpx.WriteError(w, http.StatusForbidden, errors.New("forbidden"))
				return
			}
			user, err := a.users.GetByID(ctx, claims.Subject)
			if err != nil {
				a.logger.Error("user lookup failed", "error", err)
				httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
				return
			}
			if user == nil {
				httpx.WriteError(w, http.StatusUnauthorized, errors.New("missing or invalid authorization"))
				return
			}

			allowed, err := a.evaluator.Allow(ctx, claims.Role, requiredRoles)
			if err != nil {
				a.logger.Error("authz evaluation failed", "error", err)
				httpx.WriteError(w, http.StatusInternalServerError, errors.New("internal error"))
				return
			}
			if !allowed {
				httpx.WriteError(w, http.StatusForbidden, errors.New("forbidden"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, claims.Subject, claims.Username, claims.Role)))
		})
	}
}

// Identify returns the claims for the request's Bearer token without any
// store or role checks. WebSocket endpoints use it to bind a connection to
// the authenticated user.
func (a *Auth) Identify(r *http.Request) (*security.AccessClaims, error) {
	token := extractBearer(r)
	if token == "" {
		// Browsers cannot set headers on WebSocket dials, so the token may
		// arrive as a query parameter instead.
		token = r.URL.Query().Get("access_token")
	}
	if token == "" {
		return nil, security.ErrInvalidToken
	}
	return a.tokens.ValidateAccess(token)
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
