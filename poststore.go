package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spiritual-journal/postsync"
)

var errPostNotFound = errors.New("post not found")

// ownerStore is the post store scoped to one admin. It serves both the JSON
// API and the dashboard's controllers.
type ownerStore struct {
	db    *sql.DB
	email string
}

func (s ownerStore) List(ctx context.Context) ([]postsync.Post, error) {
	posts, err := getPostsByAuthor(s.db, s.email)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	out := make([]postsync.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Sync())
	}
	return out, nil
}

func (s ownerStore) Create(ctx context.Context, title, content string) (postsync.Post, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if err := postsync.ValidateDraft(title, content); err != nil {
		return postsync.Post{}, err
	}

	id, err := createPost(s.db, s.email, title, content)
	if err != nil {
		return postsync.Post{}, fmt.Errorf("creating post: %w", err)
	}
	return s.reload(id)
}

func (s ownerStore) Update(ctx context.Context, post postsync.Post) (postsync.Post, error) {
	title, content := strings.TrimSpace(post.Title), strings.TrimSpace(post.Content)
	if err := postsync.ValidateDraft(title, content); err != nil {
		return postsync.Post{}, err
	}

	ok, err := updatePost(s.db, s.email, post.ID, title, content)
	if err != nil {
		return postsync.Post{}, fmt.Errorf("updating post %d: %w", post.ID, err)
	}
	if !ok {
		return postsync.Post{}, errPostNotFound
	}
	return s.reload(post.ID)
}

func (s ownerStore) Delete(ctx context.Context, id int64) error {
	ok, err := deletePost(s.db, s.email, id)
	if err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	if !ok {
		return errPostNotFound
	}
	return nil
}

// reload reads back the stored row so callers get exactly what was saved.
func (s ownerStore) reload(id int64) (postsync.Post, error) {
	post, err := getPostByID(s.db, id)
	if err != nil {
		return postsync.Post{}, fmt.Errorf("reading post %d: %w", id, err)
	}
	if post == nil {
		return postsync.Post{}, errPostNotFound
	}
	return post.Sync(), nil
}
