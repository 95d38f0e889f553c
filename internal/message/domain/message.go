package domain

import (
	"errors"
	"time"
)

// Message is a direct message between two users.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate validates the message for persistence.
func (m *Message) Validate() error {
	if m.SenderID == "" {
		return errors.New("sender id is required")
	}
	if m.ReceiverID == "" {
		return errors.New("receiver id is required")
	}
	if m.Content == "" {
		return errors.New("content is required")
	}
	return nil
}
