package speech

import (
	"sync"
	"time"
)

// Retrier holds at most one pending callback that fires after a fixed delay.
// Scheduling again replaces the pending callback.
type Retrier struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// NewRetrier returns a Retrier that waits delay before each callback.
func NewRetrier(delay time.Duration) *Retrier {
	return &Retrier{delay: delay}
}

// Schedule arranges for fn to run after the delay, cancelling any callback
// still pending.
func (r *Retrier) Schedule(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	r.gen++
	gen := r.gen
	r.timer = time.AfterFunc(r.delay, func() {
		r.mu.Lock()
		// A Cancel or Schedule that raced with the timer firing wins.
		current := r.gen == gen && r.timer != nil
		r.timer = nil
		r.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending callback, if any.
func (r *Retrier) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Pending reports whether a callback is waiting to fire.
func (r *Retrier) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

func (r *Retrier) stopLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
}
