package audio

import (
	"sync"
	"time"
)

// Player is the narrow surface the fader drives.
type Player interface {
	// SetVolume sets the player volume in [0, 1].
	SetVolume(v float64)
	// Playing reports whether playback is currently active.
	Playing() bool
}

// defaultFadeTick is the interpolation rate.
const defaultFadeTick = 25 * time.Millisecond

// Fader performs smooth, cancellable volume ramps on one player. A new
// FadeTo cancels any in-flight fade (last-writer-wins, no queueing).
type Fader struct {
	player Player
	tick   time.Duration

	mu      sync.Mutex
	gen     uint64
	current float64
}

// NewFader creates a fader starting at full volume.
func NewFader(player Player) *Fader {
	return &Fader{player: player, tick: defaultFadeTick, current: 1.0}
}

// Current returns the last volume the fader set.
func (f *Fader) Current() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// FadeTo ramps the volume to target over duration. onComplete (optional)
// fires only if playback is still active and the final volume matches the
// requested target, guarding against stale completions after a
// cancel-and-retarget race.
func (f *Fader) FadeTo(target float64, duration time.Duration, onComplete func()) {
	target = clamp(target)

	f.mu.Lock()
	f.gen++
	gen := f.gen
	from := f.current

	if duration <= 0 || from == target {
		f.current = target
		f.mu.Unlock()
		f.player.SetVolume(target)
		f.complete(gen, target, onComplete)
		return
	}
	f.mu.Unlock()

	go f.run(gen, from, target, duration, onComplete)
}

func (f *Fader) run(gen uint64, from, target float64, duration time.Duration, onComplete func()) {
	steps := int(duration / f.tick)
	if steps < 1 {
		steps = 1
	}
	ticker := time.NewTicker(f.tick)
	defer ticker.Stop()

	for i := 1; i <= steps; i++ {
		<-ticker.C

		v := from + (target-from)*float64(i)/float64(steps)

		f.mu.Lock()
		if gen != f.gen {
			// Retargeted mid-fade; this ramp is stale.
			f.mu.Unlock()
			return
		}
		f.current = v
		f.mu.Unlock()

		f.player.SetVolume(v)
	}

	f.complete(gen, target, onComplete)
}

func (f *Fader) complete(gen uint64, target float64, onComplete func()) {
	if onComplete == nil {
		return
	}
	f.mu.Lock()
	ok := gen == f.gen && f.current == target
	f.mu.Unlock()

	if ok && f.player.Playing() {
		onComplete()
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
