package display

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marquessv/sidecast/internal/audio"
	"github.com/marquessv/sidecast/internal/domain/media"
	"github.com/marquessv/sidecast/internal/sched"
)

// Binder applies page resolutions to the surface. It caches the last applied
// fingerprint so equal resolutions never repaint, gates background video
// behind blocker conditions, and owns the delayed video start timer.
//
// Video is blocked while the surface is hidden, a game is running, the
// screensaver is active, or the layout editor is unlocked. Blockers only
// suppress video; images and fills always go through.
type Binder struct {
	mu      sync.Mutex
	surface Surface
	referee *audio.Referee

	videoSlot sched.Slot

	res     media.PageResolution
	last    string
	videoUp bool

	hidden    bool
	gameplay  bool
	saver     bool
	editing   bool
	suspended bool

	savedPos   time.Duration
	wasPlaying bool
}

// NewBinder creates a binder. The surface starts hidden until the transport
// reports a connected renderer.
func NewBinder(surface Surface, referee *audio.Referee) *Binder {
	return &Binder{surface: surface, referee: referee, hidden: true}
}

// Apply paints the resolution onto the surface. An unchanged fingerprint is
// a no-op unless force is set, so rapid-fire events that resolve to the same
// media never flicker the screen.
func (b *Binder) Apply(res media.PageResolution, force bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fp := res.Fingerprint()
	if !force && fp == b.last {
		return
	}
	b.res = res
	b.last = fp
	b.wasPlaying = false
	b.savedPos = 0
	b.paintLocked()
}

// paintLocked tears down any running video and repaints from b.res.
func (b *Binder) paintLocked() {
	b.stopVideoLocked()
	bg := b.res.Background

	switch b.res.Kind {
	case media.PageSolid:
		b.surface.ShowFill(FillFrame{Color: b.res.Color, Opacity: bg.Opacity})

	case media.PageVideo:
		// Zero delay goes straight to video; the interim image would only
		// flash for a frame. Blocked video keeps the image as its stand-in.
		if bg.VideoDelay <= 0 && !b.blockedLocked() {
			b.scheduleVideoLocked(0)
			return
		}
		b.showImageLocked()
		b.scheduleVideoLocked(0)

	default:
		b.showImageLocked()
	}
}

// showImageLocked shows the resolved image, or a black fill when every
// category came up empty.
func (b *Binder) showImageLocked() {
	bg := b.res.Background
	if b.res.ImagePath == "" {
		b.surface.ShowFill(FillFrame{Color: "#000000", Opacity: bg.Opacity})
		return
	}
	b.surface.ShowImage(ImageFrame{
		Path:       b.res.ImagePath,
		Opacity:    bg.Opacity,
		BlurRadius: bg.BlurRadius,
		PanZoom:    bg.PanZoom,
	})
}

// scheduleVideoLocked arms the delayed start for the current resolution's
// video. Blockers are checked now and again when the timer fires, since a
// game launch or menu can arrive mid-delay.
func (b *Binder) scheduleVideoLocked(startAt time.Duration) {
	if b.res.Kind != media.PageVideo || b.res.VideoPath == "" || b.blockedLocked() {
		return
	}

	delay := b.res.Background.VideoDelay
	if delay <= 0 {
		b.startVideoLocked(startAt)
		return
	}

	fp := b.last
	b.videoSlot.Schedule(delay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// The page may have changed or a blocker appeared while waiting.
		if fp != b.last || b.blockedLocked() || b.videoUp {
			return
		}
		b.startVideoLocked(startAt)
	})
}

func (b *Binder) startVideoLocked(startAt time.Duration) {
	bg := b.res.Background
	b.surface.PlayVideo(VideoFrame{
		Path:       b.res.VideoPath,
		StartAt:    startAt,
		Muted:      bg.Mute,
		Opacity:    bg.Opacity,
		BlurRadius: bg.BlurRadius,
	})
	b.videoUp = true
	if !bg.Mute {
		b.referee.SetBackgroundActive(true)
	}
	log.Debug().Str("path", b.res.VideoPath).Dur("startAt", startAt).Msg("Background video started")
}

// stopVideoLocked cancels any pending start and stops a running video,
// releasing audio focus.
func (b *Binder) stopVideoLocked() {
	b.videoSlot.Cancel()
	if !b.videoUp {
		return
	}
	b.surface.StopVideo()
	b.videoUp = false
	b.referee.SetBackgroundActive(false)
}

func (b *Binder) blockedLocked() bool {
	return b.hidden || b.gameplay || b.saver || b.editing || b.suspended
}

// SetHidden marks the surface as disconnected or hidden.
func (b *Binder) SetHidden(hidden bool) { b.setBlocker(&b.hidden, hidden) }

// SetGameplay marks a game as running in the frontend.
func (b *Binder) SetGameplay(on bool) { b.setBlocker(&b.gameplay, on) }

// SetScreensaver marks the frontend screensaver as active.
func (b *Binder) SetScreensaver(on bool) { b.setBlocker(&b.saver, on) }

// SetEditing marks the layout editor as unlocked.
func (b *Binder) SetEditing(on bool) { b.setBlocker(&b.editing, on) }

// setBlocker flips one blocker flag. Raising any blocker stops the video
// immediately; clearing the last one re-arms the delayed start from the top.
func (b *Binder) setBlocker(flag *bool, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if *flag == on {
		return
	}
	*flag = on

	if on {
		wasUp := b.videoUp
		b.stopVideoLocked()
		// The stopped video leaves a dead frame; put the interim image back.
		if wasUp && !b.hidden {
			b.showImageLocked()
		}
		return
	}
	if !b.videoUp {
		b.scheduleVideoLocked(0)
	}
}

// Suspend stops the video, remembering its position so Resume can continue
// where it left off. Used while a menu covers the screen.
func (b *Binder) Suspend() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.wasPlaying = b.videoUp
	if b.videoUp {
		b.savedPos = b.surface.VideoPosition()
	}
	b.stopVideoLocked()
	b.suspended = true
}

// Resume continues a suspended video at its saved position, or re-arms the
// normal delayed start if nothing was playing when Suspend hit.
func (b *Binder) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.suspended = false
	if b.res.Kind != media.PageVideo || b.blockedLocked() || b.videoUp {
		return
	}
	if b.wasPlaying {
		b.wasPlaying = false
		b.startVideoLocked(b.savedPos)
		return
	}
	b.scheduleVideoLocked(0)
}

// VideoEnded records that the renderer's video finished on its own, releasing
// audio focus without sending a redundant stop command.
func (b *Binder) VideoEnded() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.videoUp {
		return
	}
	b.videoUp = false
	b.referee.SetBackgroundActive(false)
}

// VideoPlaying reports whether a background video is currently up.
func (b *Binder) VideoPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.videoUp
}

// Close cancels any pending timers.
func (b *Binder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopVideoLocked()
}
