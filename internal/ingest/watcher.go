package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/marquessv/sidecast/internal/domain/state"
)

// Handler receives parsed frontend events. The display controller's
// dispatcher is the production handler; it serializes events onto its loop.
type Handler func(state.Event)

// Watcher monitors the signal directory and feeds debounced, parsed events
// to the handler.
type Watcher struct {
	dir       string
	fw        *fsnotify.Watcher
	debouncer *Debouncer
	handler   Handler
}

// NewWatcher creates a watcher for the signal directory.
func NewWatcher(dir string, window, settle time.Duration, handler Handler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create signal watcher: %w", err)
	}

	w := &Watcher{dir: dir, fw: fw, handler: handler}
	w.debouncer = NewDebouncer(window, settle, w.dispatch)
	return w, nil
}

// Start begins watching. It blocks until the context is cancelled or the
// watcher hits a fatal error.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	defer w.fw.Close()
	defer w.debouncer.Stop()

	log.Info().Str("dir", w.dir).Msg("Signal watcher started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Signal watcher stopped")
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !IsSignalFile(name) {
				continue
			}
			log.Debug().Str("file", name).Str("op", event.Op.String()).Msg("Signal file changed")
			w.debouncer.Notify(name)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Signal watcher error")
		}
	}
}

// dispatch runs on the debouncer's timer goroutine once the burst settled.
func (w *Watcher) dispatch(name string) {
	ev, ok := ParseEventFile(w.dir, name)
	if !ok {
		// Fact files and unreadable events are not dispatched; the display
		// keeps whatever it showed last.
		return
	}
	w.handler(ev)
}
