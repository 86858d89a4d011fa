// Package postsync keeps an admin's local view of journal posts consistent
// with the post store across load, create, update and delete requests, and
// reports each outcome through a single-slot notification.
package postsync

import (
	"context"
	"strings"
)

// Post is a journal entry as served by the post store.
type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Store is the persistence boundary the controller talks to.
type Store interface {
	List(ctx context.Context) ([]Post, error)
	Create(ctx context.Context, title, content string) (Post, error)
	Update(ctx context.Context, post Post) (Post, error)
	Delete(ctx context.Context, id int64) error
}

// ValidateDraft rejects empty or whitespace-only title and content.
func ValidateDraft(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(content) == "" {
		return NewValidationError("content", "content is required")
	}
	return nil
}
