package postsync

import (
	"context"
	"errors"
)

// User identifies the signed-in principal. Email is empty when unknown.
type User struct {
	Email string
}

// Session is the auth provider's view of a signed-in admin.
type Session struct {
	User User
}

// AuthProvider resolves and terminates sessions. CurrentSession returns
// nil, nil when nobody is signed in.
type AuthProvider interface {
	CurrentSession(ctx context.Context) (*Session, error)
	SignOut(ctx context.Context) error
}

// Gate guards the admin surface: no controller call is made without a
// session, and entries load the post list until one load succeeds.
type Gate struct {
	Auth AuthProvider
}

// Enter resolves the session and loads c unless c already holds a loaded
// list. It returns ErrAuthRequired when there is no session; callers
// redirect instead of retrying. A failed load is not an entry failure: the
// controller state reports it and the next Enter fetches again.
func (g Gate) Enter(ctx context.Context, c *Controller) (*Session, error) {
	session, err := g.Auth.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrAuthRequired
	}

	err = c.loadOnce(ctx)
	if err != nil && !errors.Is(err, ErrLoadFailed) && !errors.Is(err, ErrBusy) {
		return nil, err
	}
	return session, nil
}

// Leave signs the session out.
func (g Gate) Leave(ctx context.Context) error {
	return g.Auth.SignOut(ctx)
}
