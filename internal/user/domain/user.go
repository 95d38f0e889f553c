package domain

import (
	"errors"
	"strings"
	"time"
)

// User is the core account entity. PasswordHash holds the encoded PBKDF2
// hash, never a plaintext password.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Bio          string
	AvatarURL    string
	CreatedAt    time.Time
}

// RoleUser is the role assigned to newly registered accounts.
const RoleUser = "User"

// RoleAdmin grants access to administrative endpoints.
const RoleAdmin = "Admin"

// Validate validates the user for persistence. Returns an error describing
// the first validation failure.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("username is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("a valid email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
