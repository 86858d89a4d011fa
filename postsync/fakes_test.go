package postsync

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errUnreachable = errors.New("dial tcp: connection refused")

// memStore is an in-memory Store that assigns ids from nextID.
type memStore struct {
	mu     sync.Mutex
	posts  []Post
	nextID int64
	calls  int

	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newMemStore(nextID int64, posts ...Post) *memStore {
	return &memStore{posts: posts, nextID: nextID}
}

func (s *memStore) List(ctx context.Context) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]Post(nil), s.posts...), nil
}

func (s *memStore) Create(ctx context.Context, title, content string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.createErr != nil {
		return Post{}, s.createErr
	}
	p := Post{ID: s.nextID, Title: title, Content: content}
	s.nextID++
	s.posts = append(s.posts, p)
	return p, nil
}

func (s *memStore) Update(ctx context.Context, post Post) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.updateErr != nil {
		return Post{}, s.updateErr
	}
	for i := range s.posts {
		if s.posts[i].ID == post.ID {
			s.posts[i] = post
			return post, nil
		}
	}
	return Post{}, &StatusError{Method: "PUT", StatusCode: 404}
}

func (s *memStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return &StatusError{Method: "DELETE", StatusCode: 404}
}

func (s *memStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// blockingStore holds every call until release is closed.
type blockingStore struct {
	*memStore
	started chan struct{}
	release chan struct{}
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		memStore: newMemStore(1),
		started:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
}

func (s *blockingStore) Create(ctx context.Context, title, content string) (Post, error) {
	s.started <- struct{}{}
	<-s.release
	return s.memStore.Create(ctx, title, content)
}

// fakeTimers records scheduled callbacks so tests decide when windows end.
type fakeTimers struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.pending = append(ft.pending, t)
	return t
}

// elapse runs every timer that has not been stopped.
func (ft *fakeTimers) elapse() {
	ft.mu.Lock()
	var due []*fakeTimer
	for _, t := range ft.pending {
		if !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	ft.pending = nil
	ft.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (ft *fakeTimers) last() *fakeTimer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if len(ft.pending) == 0 {
		return nil
	}
	return ft.pending[len(ft.pending)-1]
}

func newTestController(store Store) (*Controller, *fakeTimers) {
	timers := &fakeTimers{}
	c := New(store, WithNotifier(NewNotifier(DefaultNotificationWindow, timers.AfterFunc)))
	return c, timers
}

func idPtr(id int64) *int64 {
	return &id
}
