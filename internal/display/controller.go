package display

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marquessv/sidecast/internal/audio"
	"github.com/marquessv/sidecast/internal/domain/gamelist"
	"github.com/marquessv/sidecast/internal/domain/layout"
	"github.com/marquessv/sidecast/internal/domain/media"
	"github.com/marquessv/sidecast/internal/domain/state"
	"github.com/marquessv/sidecast/internal/sched"
)

// scrollThreshold is the description length above which the text widget
// auto-scrolls.
const scrollThreshold = 280

// scrollInterval is the auto-scroll tick rate.
const scrollInterval = 150 * time.Millisecond

// DisplayState is the full renderer-facing snapshot pushed over the wire.
// AudioFocus names the single source the renderer may let through; every
// renderer-side player fades itself against it.
type DisplayState struct {
	State           string                 `json:"state"`
	AudioFocus      audio.Source           `json:"audioFocus"`
	System          string                 `json:"system"`
	Game            string                 `json:"game,omitempty"`
	GameName        string                 `json:"gameName,omitempty"`
	Page            media.PageResolution   `json:"page"`
	Widgets         []media.ResolvedWidget `json:"widgets"`
	PageID          string                 `json:"pageId"`
	PageIndex       int                    `json:"pageIndex"`
	PageCount       int                    `json:"pageCount"`
	MenuOpen        bool                   `json:"menuOpen"`
	EditingUnlocked bool                   `json:"editingUnlocked"`
}

// Controller is the hub: frontend events come in, resolved display state goes
// out. All mutation runs on one dispatch goroutine, so the state machine,
// layout edits, and blocker updates never race.
type Controller struct {
	machine   *state.Machine
	resolver  *media.Resolver
	layouts   *layout.Store
	gamelists *gamelist.Store
	binder    *Binder
	referee   *audio.Referee
	screen    layout.ScreenSize

	sink        func(DisplayState)
	onScroll    func()
	onState     func(state.AppState)
	onNextTrack func()

	tasks  chan func()
	scroll sched.Repeater

	menuOpen        bool
	editingUnlocked bool

	mu   sync.Mutex
	last DisplayState
}

// NewController wires the hub. sink receives every published snapshot (the
// transport broadcasts it); onScroll fires auto-scroll ticks for long
// description text and may be nil.
func NewController(
	machine *state.Machine,
	resolver *media.Resolver,
	layouts *layout.Store,
	gamelists *gamelist.Store,
	binder *Binder,
	referee *audio.Referee,
	screen layout.ScreenSize,
	sink func(DisplayState),
	onScroll func(),
) *Controller {
	if sink == nil {
		sink = func(DisplayState) {}
	}
	c := &Controller{
		machine:   machine,
		resolver:  resolver,
		layouts:   layouts,
		gamelists: gamelists,
		binder:    binder,
		referee:   referee,
		screen:    screen,
		sink:      sink,
		onScroll:  onScroll,
		tasks:     make(chan func(), 64),
	}
	// Every focus change is pushed so renderer-side players can fade.
	referee.Subscribe(func(audio.Source) {
		c.enqueue(func() { c.publish() })
	})
	return c
}

// Run processes queued work until the context ends. Call exactly once.
func (c *Controller) Run(ctx context.Context) {
	defer c.scroll.Stop()
	defer c.binder.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-c.tasks:
			task()
		}
	}
}

// enqueue submits work to the dispatch loop, dropping it if the queue is
// saturated. A dropped task only delays a repaint; the next event repairs it.
func (c *Controller) enqueue(task func()) {
	select {
	case c.tasks <- task:
	default:
		log.Warn().Msg("Display task queue full, dropping task")
	}
}

// SetStateListener registers a callback invoked with the current state on
// every publish, on the dispatch loop. The ambient music controller uses it
// to follow gameplay transitions.
func (c *Controller) SetStateListener(fn func(state.AppState)) {
	c.enqueue(func() { c.onState = fn })
}

// SetTrackSkipper registers the callback behind the renderer's skip-track
// control. Nil leaves the control inert.
func (c *Controller) SetTrackSkipper(fn func()) {
	c.enqueue(func() { c.onNextTrack = fn })
}

// NextTrack skips the ambient music to its next track.
func (c *Controller) NextTrack() {
	c.enqueue(func() {
		if c.onNextTrack != nil {
			c.onNextTrack()
		}
	})
}

// Seed adopts a startup state without producing a transition, then paints it.
func (c *Controller) Seed(st state.AppState) {
	c.enqueue(func() {
		c.machine.Seed(st)
		c.syncBlockers(st)
		c.reload(true)
	})
}

// Dispatch applies one frontend event. Called by the ingestion pipeline.
func (c *Controller) Dispatch(ev state.Event) {
	c.enqueue(func() {
		st, effect := c.machine.Apply(ev)
		c.syncBlockers(st)

		switch effect {
		case state.EffectReload:
			c.reload(false)
		case state.EffectApply, state.EffectRetain:
			// Visuals stay; the state label still changed.
			c.publish()
		case state.EffectNone:
			c.publish()
		}
	})
}

// syncBlockers derives the binder's gameplay and screensaver blockers from
// the state.
func (c *Controller) syncBlockers(st state.AppState) {
	_, playing := st.(state.GamePlaying)
	_, saver := st.(state.Screensaver)
	c.binder.SetGameplay(playing)
	c.binder.SetScreensaver(saver)
}

// SetMenuOpen reflects the renderer's menu overlay. An open menu silences
// all audio and suspends the background video in place.
func (c *Controller) SetMenuOpen(open bool) {
	c.enqueue(func() {
		if c.menuOpen == open {
			return
		}
		c.menuOpen = open
		c.referee.SetMenuActive(open)
		if open {
			c.binder.Suspend()
		} else {
			c.binder.Resume()
		}
		c.publish()
	})
}

// SetEditingUnlocked reflects the layout editor lock. Unlocked editing
// blocks background video so drag handles stay visible.
func (c *Controller) SetEditingUnlocked(unlocked bool) {
	c.enqueue(func() {
		if c.editingUnlocked == unlocked {
			return
		}
		c.editingUnlocked = unlocked
		c.binder.SetEditing(unlocked)
		c.publish()
	})
}

// SetWidgetAudio marks one widget's audio as busy or idle.
func (c *Controller) SetWidgetAudio(id string, active bool) {
	c.referee.SetWidgetActive(id, active)
}

// SetSurfaceVisible tracks renderer connections. A newly visible surface
// gets a full forced repaint since it has no prior frame.
func (c *Controller) SetSurfaceVisible(visible bool) {
	c.enqueue(func() {
		c.binder.SetHidden(!visible)
		if visible {
			c.reload(true)
		}
	})
}

// SelectPage switches the page carousel to the given index (wrapping) and
// repaints.
func (c *Controller) SelectPage(index int) {
	c.enqueue(func() {
		if _, err := c.layouts.SetCurrentPage(index); err != nil {
			log.Error().Err(err).Int("index", index).Msg("Failed to switch page")
			return
		}
		c.reload(false)
	})
}

// NextPage advances the carousel by delta pages (negative for backwards).
func (c *Controller) NextPage(delta int) {
	c.enqueue(func() {
		l := c.layouts.Layout()
		if _, err := c.layouts.SetCurrentPage(l.CurrentPage + delta); err != nil {
			log.Error().Err(err).Msg("Failed to step page")
			return
		}
		c.reload(false)
	})
}

// UpdateWidget upserts one widget on a page and repaints.
func (c *Controller) UpdateWidget(pageID string, w layout.OverlayWidget) {
	c.enqueue(func() {
		if err := c.layouts.UpsertWidget(pageID, w); err != nil {
			log.Error().Err(err).Str("page", pageID).Msg("Failed to update widget")
			return
		}
		c.reload(false)
	})
}

// ReplaceLayout swaps the entire layout (editor save) and repaints.
func (c *Controller) ReplaceLayout(l layout.Layout) {
	c.enqueue(func() {
		if err := c.layouts.Replace(l); err != nil {
			log.Error().Err(err).Msg("Failed to replace layout")
			return
		}
		c.reload(true)
	})
}

// SetMuted updates the audio mute preferences at runtime.
func (c *Controller) SetMuted(background, music bool) {
	c.referee.SetMuted(background, music)
}

// NotifyVideoEnded records that the renderer's video finished on its own.
func (c *Controller) NotifyVideoEnded() {
	c.binder.VideoEnded()
}

// Layout returns the current layout for the editing surface.
func (c *Controller) Layout() layout.Layout {
	return c.layouts.Layout()
}

// Current returns the last published snapshot for new renderer connections.
func (c *Controller) Current() DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// reload re-resolves the current page and widgets for the current state,
// applies the background, and publishes. Runs on the dispatch loop.
func (c *Controller) reload(force bool) {
	st := c.machine.Current()
	page := c.layouts.CurrentPage()
	res := c.resolver.ResolvePage(page.Background, st)

	widgets := make([]media.ResolvedWidget, 0, len(page.Widgets))
	longText := false
	for _, w := range page.Widgets {
		rw, missing := c.resolver.ResolveWidget(w, res.SystemID, res.GameID, c.screen)
		if missing {
			// Required widgets with no asset are hidden rather than shown
			// empty.
			continue
		}
		if len(rw.Text) > scrollThreshold {
			longText = true
		}
		widgets = append(widgets, rw)
	}

	c.binder.Apply(res, force)
	c.setScroll(longText)
	c.publishWith(res, widgets, page)
}

// setScroll starts or stops the description auto-scroll ticker.
func (c *Controller) setScroll(on bool) {
	if c.onScroll == nil {
		return
	}
	if on {
		c.scroll.Start(scrollInterval, c.onScroll)
	} else {
		c.scroll.Stop()
	}
}

// publish re-emits the last snapshot with current state and flags, without
// re-resolving media.
func (c *Controller) publish() {
	c.mu.Lock()
	snap := c.last
	c.mu.Unlock()
	c.publishWith(snap.Page, snap.Widgets, layout.WidgetPage{ID: snap.PageID})
}

func (c *Controller) publishWith(res media.PageResolution, widgets []media.ResolvedWidget, page layout.WidgetPage) {
	st := c.machine.Current()
	l := c.layouts.Layout()

	snap := DisplayState{
		State:           state.StateName(st),
		AudioFocus:      c.referee.Winner(),
		System:          res.SystemID,
		Game:            res.GameID,
		GameName:        c.displayName(st, res),
		Page:            res,
		Widgets:         widgets,
		PageID:          page.ID,
		PageIndex:       l.CurrentPage,
		PageCount:       len(l.Pages),
		MenuOpen:        c.menuOpen,
		EditingUnlocked: c.editingUnlocked,
	}

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()
	if c.onState != nil {
		c.onState(st)
	}
	c.sink(snap)
}

// displayName prefers the name the frontend sent with the event, falling
// back to the gamelist.
func (c *Controller) displayName(st state.AppState, res media.PageResolution) string {
	if gb, ok := st.(state.GameBrowsing); ok && gb.GameName != "" {
		return gb.GameName
	}
	if sv, ok := st.(state.Screensaver); ok && sv.CurrentGame != nil && sv.CurrentGame.GameName != "" {
		return sv.CurrentGame.GameName
	}
	if res.GameID == "" {
		return ""
	}
	return c.gamelists.DisplayName(res.SystemID, res.GameID)
}
