package ingest

import (
	"sync"
	"time"

	"github.com/marquessv/sidecast/internal/sched"
)

// Debouncer coalesces bursts of filesystem change notifications for the same
// signal file. A notification arriving within the window of the previous one
// for that file is dropped; the surviving notification is processed after a
// settle delay so the frontend has finished writing the file.
type Debouncer struct {
	window  time.Duration
	settle  time.Duration
	process func(name string)

	mu      sync.Mutex
	last    map[string]time.Time
	slots   map[string]*sched.Slot
	stopped bool
}

// NewDebouncer creates a debouncer. process runs on a timer goroutine once
// per surviving notification.
func NewDebouncer(window, settle time.Duration, process func(name string)) *Debouncer {
	return &Debouncer{
		window:  window,
		settle:  settle,
		process: process,
		last:    make(map[string]time.Time),
		slots:   make(map[string]*sched.Slot),
	}
}

// Notify records a raw change notification for the named signal file.
func (d *Debouncer) Notify(name string) {
	now := time.Now()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	prev, seen := d.last[name]
	d.last[name] = now
	if seen && now.Sub(prev) < d.window {
		// Burst continuation; the surviving notification is already pending.
		d.mu.Unlock()
		return
	}
	slot, ok := d.slots[name]
	if !ok {
		slot = &sched.Slot{}
		d.slots[name] = slot
	}
	d.mu.Unlock()

	slot.Schedule(d.settle, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if stopped {
			return
		}
		d.process(name)
	})
}

// Stop cancels all pending work; later notifications are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for _, slot := range d.slots {
		slot.Cancel()
	}
}
