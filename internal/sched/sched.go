// Package sched provides cancellable scheduled callbacks keyed to a single
// owner: scheduling always cancels the previous pending task, so two
// competing delayed actions can never both fire.
package sched

import (
	"sync"
	"time"
)

// Slot holds at most one pending delayed task. The zero value is ready to
// use.
type Slot struct {
	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// Schedule arranges fn to run after d, cancelling any pending task first.
// A non-positive delay runs fn synchronously.
func (s *Slot) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	seq := s.seq

	if d <= 0 {
		s.mu.Unlock()
		fn()
		return
	}

	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		// A cancel or reschedule may have raced the timer firing.
		stale := seq != s.seq
		if !stale {
			s.timer = nil
		}
		s.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
	s.mu.Unlock()
}

// Cancel drops any pending task. Safe to call when nothing is pending.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Pending reports whether a task is waiting to fire.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Repeater runs a callback at a fixed interval until stopped. Used for
// auto-scroll ticks on long text widgets.
type Repeater struct {
	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

// Start begins ticking, replacing any previous run.
func (r *Repeater) Start(interval time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.ticker = time.NewTicker(interval)
	r.done = make(chan struct{})

	ticker, done := r.ticker, r.done
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Stop halts the repeater and releases its ticker.
func (r *Repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Repeater) stopLocked() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
}
