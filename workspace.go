package main

import (
	"database/sql"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"spiritual-journal/postsync"
)

const maxWorkspaces = 256

// Workspaces holds the dashboard controller of each signed-in session. An
// evicted workspace is rebuilt, and reloaded, on the session's next visit.
type Workspaces struct {
	db      *sql.DB
	logger  *slog.Logger
	options func() []postsync.Option

	mu          sync.Mutex
	controllers *lru.Cache[string, *postsync.Controller]
}

// NewWorkspaces creates an empty registry. options, when not nil, is called
// once per new controller so that each gets its own notifier and state.
func NewWorkspaces(db *sql.DB, logger *slog.Logger, options func() []postsync.Option) *Workspaces {
	controllers, err := lru.NewWithEvict(maxWorkspaces, func(_ string, c *postsync.Controller) {
		c.Close()
	})
	if err != nil {
		panic(err)
	}
	return &Workspaces{
		db:          db,
		logger:      logger,
		options:     options,
		controllers: controllers,
	}
}

// Get returns the controller of the session token, creating it for email.
func (ws *Workspaces) Get(token, email string) *postsync.Controller {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if c, ok := ws.controllers.Get(token); ok {
		return c
	}

	opts := []postsync.Option{postsync.WithLogger(ws.logger.With("admin", email))}
	if ws.options != nil {
		opts = append(opts, ws.options()...)
	}
	c := postsync.New(ownerStore{db: ws.db, email: email}, opts...)
	ws.controllers.Add(token, c)
	return c
}

// Drop forgets the controller of token.
func (ws *Workspaces) Drop(token string) {
	ws.controllers.Remove(token)
}

func (ws *Workspaces) Len() int {
	return ws.controllers.Len()
}
