package domain

import "time"

// RefreshToken is a single-use opaque credential that can be exchanged for a
// new token pair. Role snapshots the user's role at issuance so a refresh
// does not silently escalate privileges.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Role      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's lifetime has passed at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
