package domain

import (
	"errors"
	"time"
)

// Type labels what happened. TargetID points at the liked or commented post;
// it is empty for follows.
type Type string

const (
	TypeLike    Type = "like"
	TypeComment Type = "comment"
	TypeFollow  Type = "follow"
)

// Notification tells one user that another acted on their content or account.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	SenderID    string    `json:"senderId"`
	Type        Type      `json:"type"`
	TargetID    string    `json:"targetId,omitempty"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate validates the notification for persistence.
func (n *Notification) Validate() error {
	if n.RecipientID == "" {
		return errors.New("recipient id is required")
	}
	if n.SenderID == "" {
		return errors.New("sender id is required")
	}
	switch n.Type {
	case TypeLike, TypeComment, TypeFollow:
	default:
		return errors.New("unknown notification type")
	}
	return nil
}
