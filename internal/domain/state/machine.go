package state

import (
	"github.com/rs/zerolog/log"
)

// EventType names the frontend signal that triggered a transition. Values
// match the signal file names written by the frontend.
type EventType string

const (
	EventSystemSelect          EventType = "system-select"
	EventGameSelect            EventType = "game-select"
	EventGameStart             EventType = "game-start"
	EventGameEnd               EventType = "game-end"
	EventScreensaverStart      EventType = "screensaver-start"
	EventScreensaverGameSelect EventType = "screensaver-game-select"
	EventScreensaverEnd        EventType = "screensaver-end"
)

// Event is one parsed frontend signal.
type Event struct {
	Type     EventType
	System   string
	GamePath string
	GameName string
	Reason   string // screensaver-end only: "game-start", "game-jump", "cancel"
}

// Effect tells the display controller what follow-up work a transition needs.
type Effect int

const (
	// EffectNone: nothing changed on screen.
	EffectNone Effect = iota
	// EffectReload: re-resolve media for the new state and apply it.
	EffectReload
	// EffectApply: re-apply the current resolution (blocker conditions may
	// have changed) without re-resolving media.
	EffectApply
	// EffectRetain: keep current visuals untouched.
	EffectRetain
)

// Machine applies frontend events to the current AppState. Not safe for
// concurrent use; the ingestion pipeline serializes all calls onto the
// display controller's dispatch loop.
type Machine struct {
	current     AppState
	launchGuard bool
}

// NewMachine starts in system browsing with no system known yet.
func NewMachine() *Machine {
	return &Machine{current: SystemBrowsing{}}
}

// Current returns the active state.
func (m *Machine) Current() AppState { return m.current }

// Seed replaces the state without producing an effect, used at startup to
// adopt the frontend's last known position from the fact files.
func (m *Machine) Seed(s AppState) { m.current = s }

// Apply transitions the machine and reports the required display effect.
func (m *Machine) Apply(ev Event) (AppState, Effect) {
	switch ev.Type {
	case EventSystemSelect:
		return m.replace(SystemBrowsing{SystemName: ev.System}, EffectReload)

	case EventGameSelect:
		if _, ok := m.current.(Screensaver); ok {
			// The slideshow has its own selection event; a plain game-select
			// arriving mid-screensaver is a racing leftover.
			log.Debug().Str("game", ev.GamePath).Msg("Ignoring game-select during screensaver")
			return m.current, EffectNone
		}
		return m.replace(GameBrowsing{
			SystemName: ev.System,
			GamePath:   ev.GamePath,
			GameName:   ev.GameName,
		}, EffectReload)

	case EventGameStart:
		next := GamePlaying{SystemName: ev.System, GamePath: ev.GamePath}
		if m.launchGuard {
			// Launch came from the screensaver; the screen already shows the
			// right game, so skip the reload that would race this event.
			m.launchGuard = false
			return m.replace(next, EffectApply)
		}
		return m.replace(next, EffectReload)

	case EventGameEnd:
		playing, ok := m.current.(GamePlaying)
		if !ok {
			log.Warn().
				Str("state", stateName(m.current)).
				Msg("game-end received while not in game playing state")
			return m.current, EffectNone
		}
		// Display name is re-derived on demand from the gamelist.
		return m.replace(GameBrowsing{
			SystemName: playing.SystemName,
			GamePath:   playing.GamePath,
		}, EffectReload)

	case EventScreensaverStart:
		return m.replace(Screensaver{Previous: m.snapshot()}, EffectReload)

	case EventScreensaverGameSelect:
		saver, ok := m.current.(Screensaver)
		if !ok {
			log.Warn().
				Str("state", stateName(m.current)).
				Msg("screensaver-game-select received outside screensaver")
			return m.current, EffectNone
		}
		saver.CurrentGame = &ScreensaverGame{
			SystemName: ev.System,
			GamePath:   ev.GamePath,
			GameName:   ev.GameName,
		}
		return m.replace(saver, EffectReload)

	case EventScreensaverEnd:
		return m.endScreensaver(ev.Reason)

	default:
		log.Warn().Str("event", string(ev.Type)).Msg("Unknown event type")
		return m.current, EffectNone
	}
}

func (m *Machine) endScreensaver(reason string) (AppState, Effect) {
	saver, ok := m.current.(Screensaver)
	if !ok {
		log.Warn().
			Str("state", stateName(m.current)).
			Str("reason", reason).
			Msg("screensaver-end received outside screensaver")
		return m.current, EffectNone
	}

	switch reason {
	case "game-start":
		// The user launched the slideshow game. Move to browsing it, arm the
		// guard, and wait for the real game-start event.
		next := browsingFromSaverGame(saver)
		m.launchGuard = true
		return m.replace(next, EffectNone)

	case "game-jump":
		// Jumped to the slideshow game in the frontend; its image is already
		// on screen, so keep current visuals.
		return m.replace(browsingFromSaverGame(saver), EffectRetain)

	default:
		if reason != "cancel" {
			log.Warn().Str("reason", reason).Msg("Unknown screensaver-end reason, treating as cancel")
		}
		return m.replace(saver.Previous.Restore(), EffectReload)
	}
}

// snapshot captures the browsing context to return to after the screensaver.
func (m *Machine) snapshot() SavedBrowsingState {
	switch s := m.current.(type) {
	case SystemBrowsing:
		return InSystemView{SystemName: s.SystemName}
	case GameBrowsing:
		return InGameView{SystemName: s.SystemName, GamePath: s.GamePath, GameName: s.GameName}
	case GamePlaying:
		return InGameView{SystemName: s.SystemName, GamePath: s.GamePath}
	case Screensaver:
		// Nested screensaver-start; keep the original snapshot.
		return s.Previous
	default:
		log.Warn().Str("state", stateName(m.current)).Msg("Snapshotting unrecognized state, keeping system only")
		return InSystemView{SystemName: m.current.System()}
	}
}

func browsingFromSaverGame(saver Screensaver) AppState {
	if saver.CurrentGame == nil {
		// No slide was ever shown; fall back to the saved context.
		return saver.Previous.Restore()
	}
	return GameBrowsing{
		SystemName: saver.CurrentGame.SystemName,
		GamePath:   saver.CurrentGame.GamePath,
		GameName:   saver.CurrentGame.GameName,
	}
}

func (m *Machine) replace(next AppState, effect Effect) (AppState, Effect) {
	log.Debug().
		Str("from", stateName(m.current)).
		Str("to", stateName(next)).
		Int("effect", int(effect)).
		Msg("State transition")
	m.current = next
	return next, effect
}

func stateName(s AppState) string {
	switch s.(type) {
	case SystemBrowsing:
		return "system-browsing"
	case GameBrowsing:
		return "game-browsing"
	case GamePlaying:
		return "game-playing"
	case Screensaver:
		return "screensaver"
	default:
		return "unknown"
	}
}

// StateName exposes the canonical short name for transport payloads.
func StateName(s AppState) string { return stateName(s) }
