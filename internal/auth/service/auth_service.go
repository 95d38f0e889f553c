package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"octagram/backend/internal/security"
	tokendomain "octagram/backend/internal/token/domain"
	userdomain "octagram/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrUsernameTaken       = errors.New("username already taken")
	ErrEmailTaken          = errors.New("email already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ValidationError is a user-facing input validation failure. The handler maps
// it to 400 and echoes the message to the client.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationError(msg string) error { return &ValidationError{msg: msg} }

// TokenPair holds the outcome of Login or Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Username     string
	Role         string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// TokenRepo is the minimal refresh token repository needed by the auth service.
type TokenRepo interface {
	Create(ctx context.Context, t *tokendomain.RefreshToken) error
	Consume(ctx context.Context, token string) (*tokendomain.RefreshToken, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// AuthService implements register, login, single-use refresh rotation, and logout.
type AuthService struct {
	userRepo   UserRepo
	tokenRepo  TokenRepo
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	refreshTTL time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	userRepo UserRepo,
	tokenRepo TokenRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		hasher:     hasher,
		tokens:     tokens,
		refreshTTL: refreshTTL,
	}
}

// Register creates a user with the given username, email, and password.
// New accounts always get the User role.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*userdomain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         userdomain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates with username/password and returns a fresh token pair.
// Missing user and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(ctx, user.ID, user.Username, user.Role)
}

// Refresh exchanges a refresh token for a new pair. The stored token is
// consumed before any validation, so a replayed token fails exactly like a
// token that never existed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	stored, err := s.tokenRepo.Consume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Expired(time.Now().UTC()) {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}
	// The role snapshot from the consumed token carries over so a refresh
	// never escalates beyond what login granted.
	return s.issuePair(ctx, user.ID, user.Username, stored.Role)
}

// Logout revokes every outstanding refresh token for the user. Already-issued
// access tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.tokenRepo.DeleteByUser(ctx, userID)
}

func (s *AuthService) issuePair(ctx context.Context, userID, username, role string) (*TokenPair, error) {
	access, expiresAt, err := s.tokens.IssueAccess(userID, username, role)
	if err != nil {
		return nil, err
	}
	refresh, err := security.NewRefreshTokenValue()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.tokenRepo.Create(ctx, &tokendomain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     refresh,
		Role:      role,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		UserID:       userID,
		Username:     username,
		Role:         role,
	}, nil
}

func validateUsername(username string) error {
	if username == "" {
		return validationError("username is required")
	}
	if len(username) < 3 || len(username) > 30 {
		return validationError("username must be between 3 and 30 characters")
	}
	const usernamePattern = `^[a-zA-Z0-9._]+$`
	ok, _ := regexp.MatchString(usernamePattern, username)
	if !ok {
		return validationError("username may only contain letters, numbers, dots, and underscores")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return validationError("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return validationError("password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	if !hasUpper {
		return validationError("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return validationError("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return validationError("password must contain at least one number")
	}
	return nil
}
