package domain

import (
	"errors"
	"time"
)

// Post is a photo post with an optional caption.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ImageURL  string    `json:"imageUrl"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a user's comment on a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate validates the post for persistence.
func (p *Post) Validate() error {
	if p.UserID == "" {
		return errors.New("user id is required")
	}
	if p.ImageURL == "" {
		return errors.New("image url is required")
	}
	return nil
}

// Validate validates the comment for persistence.
func (c *Comment) Validate() error {
	if c.PostID == "" {
		return errors.New("post id is required")
	}
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	if c.Content == "" {
		return errors.New("content is required")
	}
	return nil
}
