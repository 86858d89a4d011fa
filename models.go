package main

import (
	"time"

	"spiritual-journal/postsync"
)

type Post struct {
	ID          int64
	AuthorEmail string
	Title       string
	Content     string
	CreatedAt   time.Time
}

// Sync returns the fields shared with admin clients.
func (p Post) Sync() postsync.Post {
	return postsync.Post{ID: p.ID, Title: p.Title, Content: p.Content}
}

type Session struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}
