package postsync

import (
	"sync"
	"time"
)

// DefaultNotificationWindow is how long a notification stays visible.
const DefaultNotificationWindow = 3 * time.Second

// Timer is the subset of *time.Timer the notifier needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Notifier holds at most one visible message. Showing a new message replaces
// the current one and restarts the display window.
type Notifier struct {
	window    time.Duration
	afterFunc AfterFunc
	onChange  func(message string)

	mu      sync.Mutex
	message string
	seq     uint64
	timer   Timer
}

// NewNotifier returns a notifier that clears each message after window.
// A nil afterFunc uses time.AfterFunc.
func NewNotifier(window time.Duration, afterFunc AfterFunc) *Notifier {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Notifier{
		window:    window,
		afterFunc: afterFunc,
	}
}

// OnChange registers fn to be called after every change of the visible
// message, including expiry. fn runs without the notifier lock held.
func (n *Notifier) OnChange(fn func(message string)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Show makes message the visible notification.
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.message = message
	n.timer = n.afterFunc(n.window, func() { n.expire(seq) })
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(message)
	}
}

// Current returns the visible message, or "" when none is shown.
func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Clear hides the current message and cancels its timer.
func (n *Notifier) Clear() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.seq++
	changed := n.message != ""
	n.message = ""
	fn := n.onChange
	n.mu.Unlock()

	if changed && fn != nil {
		fn("")
	}
}

// expire clears the message shown under seq unless a newer one replaced it.
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if seq != n.seq {
		n.mu.Unlock()
		return
	}
	n.message = ""
	n.timer = nil
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn("")
	}
}
