// Package audio arbitrates which of the companion's audio-capable sources
// may be heard and moves player volumes toward that verdict with smooth,
// cancellable fades.
package audio

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Source identifies one audio-capable component.
type Source string

const (
	// SourceNone: everything is silent (menu open, or all sources muted).
	SourceNone Source = "none"
	// SourceWidget: a per-widget video has audio focus.
	SourceWidget Source = "widget"
	// SourceBackground: the background video has audio focus.
	SourceBackground Source = "background"
	// SourceMusic: ambient music has audio focus.
	SourceMusic Source = "music"
)

// Referee decides which single source is audible. Priority, highest first:
// open menu (silence) > any busy widget > active background > music. All
// mutation goes through the setter API; the winner is recomputed
// synchronously inside each setter so stale priority can never leak between
// updates.
type Referee struct {
	mu          sync.Mutex
	busyWidgets map[string]bool
	background  bool
	menu        bool

	muteBackground bool
	muteMusic      bool

	winner Source
	subs   []func(Source)
}

// NewReferee creates a referee with the user's mute preferences.
// muteBackground removes background video from contention; muteMusic removes
// ambient music.
func NewReferee(muteBackground, muteMusic bool) *Referee {
	r := &Referee{
		busyWidgets:    make(map[string]bool),
		muteBackground: muteBackground,
		muteMusic:      muteMusic,
	}
	r.winner = r.computeLocked()
	return r
}

// Subscribe registers a callback invoked with the winner on every change,
// and immediately with the current winner. Callbacks run synchronously on
// the mutating goroutine; keep them cheap (they typically just retarget a
// fader).
func (r *Referee) Subscribe(fn func(Source)) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	winner := r.winner
	r.mu.Unlock()
	fn(winner)
}

// Winner returns the currently audible source.
func (r *Referee) Winner() Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winner
}

// SetWidgetActive marks a widget's audio as busy or idle.
func (r *Referee) SetWidgetActive(id string, active bool) {
	r.mu.Lock()
	if active {
		r.busyWidgets[id] = true
	} else {
		delete(r.busyWidgets, id)
	}
	r.recomputeLocked()
}

// SetBackgroundActive marks the background video as playing with audio.
func (r *Referee) SetBackgroundActive(active bool) {
	r.mu.Lock()
	r.background = active
	r.recomputeLocked()
}

// SetMenuActive marks a menu as open; an open menu silences everything.
func (r *Referee) SetMenuActive(active bool) {
	r.mu.Lock()
	r.menu = active
	r.recomputeLocked()
}

// SetMuted updates the user's mute preferences at runtime.
func (r *Referee) SetMuted(background, music bool) {
	r.mu.Lock()
	r.muteBackground = background
	r.muteMusic = music
	r.recomputeLocked()
}

// recomputeLocked publishes the winner if it changed. Unlocks r.mu.
func (r *Referee) recomputeLocked() {
	next := r.computeLocked()
	if next == r.winner {
		r.mu.Unlock()
		return
	}
	r.winner = next
	subs := make([]func(Source), len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	log.Debug().Str("winner", string(next)).Msg("Audio focus changed")
	for _, fn := range subs {
		fn(next)
	}
}

// computeLocked resolves the fixed priority order. Ties between
// simultaneously active flags are settled here, never by arrival time.
func (r *Referee) computeLocked() Source {
	switch {
	case r.menu:
		return SourceNone
	case len(r.busyWidgets) > 0:
		return SourceWidget
	case r.background && !r.muteBackground:
		return SourceBackground
	case !r.muteMusic:
		return SourceMusic
	default:
		return SourceNone
	}
}
