package domain

import (
	"errors"
	"time"
)

// Media types a story may carry.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Story is an ephemeral media post that expires after a fixed window.
type Story struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MediaURL  string    `json:"mediaUrl"`
	MediaType string    `json:"mediaType"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the story is past its expiry at the given instant.
func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Validate validates the story for persistence.
func (s *Story) Validate() error {
	if s.UserID == "" {
		return errors.New("user id is required")
	}
	if s.MediaURL == "" {
		return errors.New("media url is required")
	}
	if s.MediaType != MediaImage && s.MediaType != MediaVideo {
		return errors.New("media type must be image or video")
	}
	return nil
}
