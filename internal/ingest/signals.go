// Package ingest consumes the frontend's file-based signal protocol: one
// plain-text file per event written to a well-known directory, most recent
// write wins.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/marquessv/sidecast/internal/domain/state"
)

// Signal file names, keyed by the event they carry.
var eventFiles = map[string]state.EventType{
	"system-select.txt":           state.EventSystemSelect,
	"game-select.txt":             state.EventGameSelect,
	"game-start.txt":              state.EventGameStart,
	"game-end.txt":                state.EventGameEnd,
	"screensaver-start.txt":       state.EventScreensaverStart,
	"screensaver-game-select.txt": state.EventScreensaverGameSelect,
	"screensaver-end.txt":         state.EventScreensaverEnd,
}

// Fact file names. The frontend keeps these current alongside the event
// files; they are read to seed state at startup.
const (
	factSystem     = "system.txt"
	factGame       = "game.txt"
	factGameName   = "game_name.txt"
	factGameSystem = "game_system.txt"
)

// IsSignalFile reports whether a directory entry is part of the protocol.
func IsSignalFile(name string) bool {
	if _, ok := eventFiles[name]; ok {
		return true
	}
	switch name {
	case factSystem, factGame, factGameName, factGameSystem:
		return true
	}
	return false
}

// ParseEventFile reads and parses one event signal file. The boolean is
// false when the file carries no usable event this cycle (missing, empty, or
// unreadable); previously shown media must then be left alone.
func ParseEventFile(dir, name string) (state.Event, bool) {
	evType, ok := eventFiles[name]
	if !ok {
		return state.Event{}, false
	}

	lines, readable := readLines(filepath.Join(dir, name))
	if !readable {
		return state.Event{}, false
	}

	ev := state.Event{Type: evType}
	switch evType {
	case state.EventSystemSelect:
		if len(lines) < 1 {
			return state.Event{}, false
		}
		ev.System = lines[0]

	case state.EventGameSelect, state.EventScreensaverGameSelect:
		if len(lines) < 2 {
			return state.Event{}, false
		}
		ev.System = lines[0]
		ev.GamePath = lines[1]
		if len(lines) > 2 {
			ev.GameName = lines[2]
		}

	case state.EventGameStart:
		if len(lines) < 2 {
			return state.Event{}, false
		}
		// The owning system, distinct from the browsing system.
		ev.System = lines[0]
		ev.GamePath = lines[1]

	case state.EventScreensaverEnd:
		if len(lines) >= 1 {
			ev.Reason = lines[0]
		} else {
			ev.Reason = "cancel"
		}

	case state.EventGameEnd, state.EventScreensaverStart:
		// No arguments.
	}

	return ev, true
}

// Facts is the frontend's persisted browsing position.
type Facts struct {
	System     string
	GamePath   string
	GameName   string
	GameSystem string
}

// ReadFacts reads the fact files. Missing or empty files leave the
// corresponding field empty; that is "no data yet", not an error.
func ReadFacts(dir string) Facts {
	return Facts{
		System:     readFact(filepath.Join(dir, factSystem)),
		GamePath:   readFact(filepath.Join(dir, factGame)),
		GameName:   readFact(filepath.Join(dir, factGameName)),
		GameSystem: readFact(filepath.Join(dir, factGameSystem)),
	}
}

// SeedState derives a best-effort startup state from the fact files so a
// cold boot shows the frontend's current position instead of a blank screen.
func (f Facts) SeedState() state.AppState {
	switch {
	case f.System != "" && f.GamePath != "":
		return state.GameBrowsing{SystemName: f.System, GamePath: f.GamePath, GameName: f.GameName}
	case f.System != "":
		return state.SystemBrowsing{SystemName: f.System}
	default:
		return state.SystemBrowsing{}
	}
}

func readFact(path string) string {
	lines, ok := readLines(path)
	if !ok || len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// readLines returns the trimmed, non-empty lines of a signal file. The
// boolean is false when the file is missing or unreadable; an existing but
// empty file yields (nil, true) so argument-free events still fire.
func readLines(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read signal file")
		}
		return nil, false
	}

	raw := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines, true
}
