package postsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Notification texts shown after each request.
const (
	MessageCreated = "New teaching shared successfully!"
	MessageUpdated = "Teaching updated successfully!"
	MessageDeleted = "Teaching deleted successfully!"
	MessageFailed  = "Something went wrong. Please try again."
)

// State is a snapshot of everything the admin dashboard renders.
type State struct {
	Posts []Post

	// Title and Content hold the compose form.
	Title   string
	Content string

	// EditingID is the post being edited; nil means composing a new post.
	EditingID *int64

	Loading    bool
	LoadFailed bool

	Notification string
}

// Editing reports whether the compose form is bound to an existing post.
func (s State) Editing() bool {
	return s.EditingID != nil
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for failed requests.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithNotifier replaces the default three second notifier.
func WithNotifier(n *Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// Controller owns the local post cache and compose form of one admin.
//
// Only one store request runs at a time per controller; Load, Submit and
// Delete return ErrBusy while another is pending. Mutation responses are
// applied verbatim without re-fetching the list.
type Controller struct {
	store    Store
	notifier *Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	posts      []Post
	title      string
	content    string
	editingID  *int64
	loading    bool
	loadFailed bool
	loaded     bool
	busy       bool

	observers    map[int]func(State)
	nextObserver int
}

// New creates a controller backed by store.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		loading:   true,
		observers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.notifier == nil {
		c.notifier = NewNotifier(DefaultNotificationWindow, nil)
	}
	c.notifier.OnChange(func(string) { c.publish() })
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	s := State{
		Posts:      append([]Post(nil), c.posts...),
		Title:      c.title,
		Content:    c.content,
		Loading:    c.loading,
		LoadFailed: c.loadFailed,
	}
	if c.editingID != nil {
		id := *c.editingID
		s.EditingID = &id
	}
	c.mu.Unlock()

	s.Notification = c.notifier.Current()
	return s
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Load replaces the cache with the store's list. On failure the cache is
// left as it was. Loading is false once Load returns, whatever the outcome.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.loading = true
	c.mu.Unlock()
	c.publish()

	posts, err := c.store.List(ctx)

	c.mu.Lock()
	c.busy = false
	c.loading = false
	if err != nil {
		c.loadFailed = true
	} else {
		c.loadFailed = false
		c.loaded = true
		c.posts = uniqueByID(posts)
	}
	c.mu.Unlock()
	c.publish()

	if err != nil {
		c.logger.Warn("loading posts failed", "error", err)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return nil
}

// loadOnce runs Load until one succeeds. After a failed load the next call
// fetches again.
func (c *Controller) loadOnce(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

// Submit creates a post when editingID is nil and updates the post with that
// id otherwise. On success the compose form is reset.
func (c *Controller) Submit(ctx context.Context, title, content string, editingID *int64) (Post, error) {
	if err := ValidateDraft(title, content); err != nil {
		return Post{}, err
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Post{}, ErrBusy
	}
	c.busy = true
	c.title = title
	c.content = content
	c.mu.Unlock()
	c.publish()

	var (
		saved Post
		err   error
	)
	if editingID == nil {
		saved, err = c.store.Create(ctx, title, content)
	} else {
		saved, err = c.store.Update(ctx, Post{ID: *editingID, Title: title, Content: content})
	}

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("saving post failed", "editing", editingID != nil, "error", err)
		c.notifier.Show(MessageFailed)
		return Post{}, fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}

	message := MessageCreated
	if editingID == nil {
		c.upsert(saved)
	} else {
		message = MessageUpdated
		if !c.replace(saved) {
			c.logger.Warn("updated post is not cached", "id", saved.ID)
		}
	}
	c.title = ""
	c.content = ""
	c.editingID = nil
	c.mu.Unlock()

	c.notifier.Show(message)
	return saved, nil
}

// Delete removes the post with id from the store and, on success, from the
// cache. A failed delete shows the same notification as a failed save.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("deleting post failed", "id", id, "error", err)
		c.notifier.Show(MessageFailed)
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	c.remove(id)
	c.mu.Unlock()

	c.notifier.Show(MessageDeleted)
	return nil
}

// BeginEdit binds the compose form to post. It does not contact the store.
func (c *Controller) BeginEdit(post Post) {
	c.mu.Lock()
	id := post.ID
	c.editingID = &id
	c.title = post.Title
	c.content = post.Content
	c.mu.Unlock()
	c.publish()
}

// CancelEdit returns the compose form to a blank new post.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editingID = nil
	c.title = ""
	c.content = ""
	c.mu.Unlock()
	c.publish()
}

// Find returns the cached post with id.
func (c *Controller) Find(id int64) (Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.posts {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}

// Close stops the pending notification timer.
func (c *Controller) Close() {
	c.notifier.Clear()
}

func (c *Controller) publish() {
	c.mu.Lock()
	fns := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	s := c.State()
	for _, fn := range fns {
		fn(s)
	}
}

// upsert appends p, or replaces the cached entry when the id is already
// present. Callers hold c.mu.
func (c *Controller) upsert(p Post) {
	if c.replace(p) {
		return
	}
	c.posts = append(c.posts, p)
}

// replace swaps the entry with p.ID in place. Callers hold c.mu.
func (c *Controller) replace(p Post) bool {
	for i := range c.posts {
		if c.posts[i].ID == p.ID {
			c.posts[i] = p
			return true
		}
	}
	return false
}

// remove drops the entry with id, keeping the order of the rest. Callers
// hold c.mu.
func (c *Controller) remove(id int64) {
	kept := make([]Post, 0, len(c.posts))
	for _, p := range c.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.posts = kept
}

func uniqueByID(posts []Post) []Post {
	seen := make(map[int64]struct{}, len(posts))
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
