// Package state models what the companion display is currently showing as a
// closed set of mutually exclusive states, driven by frontend events.
package state

// AppState is the sealed union of display states. Exactly one instance is
// active at a time; transitions replace the state wholesale.
type AppState interface {
	isAppState()
	// System returns the system the state belongs to ("" when unknown).
	System() string
}

// SystemBrowsing: the frontend shows the system carousel.
type SystemBrowsing struct {
	SystemName string
}

// GameBrowsing: the frontend shows a game list with one game highlighted.
type GameBrowsing struct {
	SystemName string
	GamePath   string // relative path/filename as reported by the frontend
	GameName   string // display name, may be empty
}

// GamePlaying: a game is running.
type GamePlaying struct {
	SystemName string
	GamePath   string
}

// Screensaver: slideshow mode. CurrentGame mutates on every
// screensaver-game-select; Previous is captured once at entry and restored
// verbatim on cancel.
type Screensaver struct {
	CurrentGame *ScreensaverGame
	Previous    SavedBrowsingState
}

// ScreensaverGame is the transient game shown by the slideshow.
type ScreensaverGame struct {
	SystemName string
	GamePath   string
	GameName   string
}

func (SystemBrowsing) isAppState() {}
func (GameBrowsing) isAppState()   {}
func (GamePlaying) isAppState()    {}
func (Screensaver) isAppState()    {}

func (s SystemBrowsing) System() string { return s.SystemName }
func (s GameBrowsing) System() string   { return s.SystemName }
func (s GamePlaying) System() string    { return s.SystemName }

func (s Screensaver) System() string {
	if s.CurrentGame != nil {
		return s.CurrentGame.SystemName
	}
	return s.Previous.System()
}

// SavedBrowsingState is the browsing context snapshot taken when the
// screensaver starts. Immutable; consumed exactly once on cancel.
type SavedBrowsingState interface {
	isSavedState()
	System() string
	// Restore rebuilds the browsing state the snapshot was taken from.
	Restore() AppState
}

// InSystemView: the user was browsing systems.
type InSystemView struct {
	SystemName string
}

// InGameView: the user was browsing games within a system.
type InGameView struct {
	SystemName string
	GamePath   string
	GameName   string
}

func (InSystemView) isSavedState() {}
func (InGameView) isSavedState()   {}

func (s InSystemView) System() string { return s.SystemName }
func (s InGameView) System() string   { return s.SystemName }

func (s InSystemView) Restore() AppState {
	return SystemBrowsing{SystemName: s.SystemName}
}

func (s InGameView) Restore() AppState {
	return GameBrowsing{SystemName: s.SystemName, GamePath: s.GamePath, GameName: s.GameName}
}
