package main

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"spiritual-journal/postsync"
)

func TestWorkspaces_GetReusesController(t *testing.T) {
	db := setupTestDB(t)
	ws := NewWorkspaces(db, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	first := ws.Get("token-a", testAdminEmail)
	second := ws.Get("token-a", testAdminEmail)
	other := ws.Get("token-b", testAdminEmail)

	if first != second {
		t.Error("expected the same controller for the same token")
	}
	if first == other {
		t.Error("expected separate controllers per token")
	}
	if ws.Len() != 2 {
		t.Errorf("expected 2 workspaces, got %d", ws.Len())
	}
}

func TestWorkspaces_ControllerScopedToEmail(t *testing.T) {
	db := setupTestDB(t)
	ws := NewWorkspaces(db, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	mustCreatePost(t, db, testAdminEmail, "Mine", "Content")
	mustCreatePost(t, db, "other@example.com", "Theirs", "Content")

	c := ws.Get("token", testAdminEmail)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	posts := c.State().Posts
	if len(posts) != 1 || posts[0].Title != "Mine" {
		t.Errorf("expected only the admin's post, got %+v", posts)
	}
}

func TestWorkspaces_Drop(t *testing.T) {
	db := setupTestDB(t)
	ws := NewWorkspaces(db, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	c := ws.Get("token", testAdminEmail)
	ws.Drop("token")

	if ws.Len() != 0 {
		t.Errorf("expected 0 workspaces, got %d", ws.Len())
	}
	if ws.Get("token", testAdminEmail) == c {
		t.Error("expected a fresh controller after drop")
	}
}

func TestWorkspaces_EvictsLeastRecent(t *testing.T) {
	db := setupTestDB(t)
	ws := NewWorkspaces(db, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	first := ws.Get("token-0", testAdminEmail)
	for i := 1; i <= maxWorkspaces; i++ {
		ws.Get("token-"+strconv.Itoa(i), testAdminEmail)
	}

	if ws.Len() != maxWorkspaces {
		t.Errorf("expected %d workspaces, got %d", maxWorkspaces, ws.Len())
	}
	if ws.Get("token-0", testAdminEmail) == first {
		t.Error("expected the oldest workspace to be evicted")
	}
}

func TestWorkspaces_OptionsPerController(t *testing.T) {
	db := setupTestDB(t)
	calls := 0
	ws := NewWorkspaces(db, slog.New(slog.NewTextHandler(io.Discard, nil)), func() []postsync.Option {
		calls++
		return []postsync.Option{postsync.WithNotifier(postsync.NewNotifier(time.Minute, nil))}
	})

	a := ws.Get("token-a", testAdminEmail)
	b := ws.Get("token-b", testAdminEmail)
	ws.Get("token-a", testAdminEmail)
	t.Cleanup(a.Close)
	t.Cleanup(b.Close)

	if calls != 2 {
		t.Errorf("expected options built once per controller, got %d calls", calls)
	}

	var seen []string
	unsubscribe := a.Subscribe(func(s postsync.State) {
		seen = append(seen, s.Notification)
	})
	defer unsubscribe()

	if _, err := a.Submit(context.Background(), "Title", "Content", nil); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if got := a.State().Notification; got != postsync.MessageCreated {
		t.Errorf("expected created notification on a, got %q", got)
	}
	if got := b.State().Notification; got != "" {
		t.Errorf("expected no notification on b, got %q", got)
	}

	var notified bool
	for _, n := range seen {
		if n == postsync.MessageCreated {
			notified = true
		}
	}
	if !notified {
		t.Error("expected a's subscribers to hear about its notification")
	}
}
