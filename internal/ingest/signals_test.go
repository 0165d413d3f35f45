package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marquessv/sidecast/internal/domain/state"
)

func writeSignal(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParseGameSelect(t *testing.T) {
	dir := t.TempDir()
	writeSignal(t, dir, "game-select.txt", "snes\nSuper Mario World.zip\nSuper Mario World\n")

	ev, ok := ParseEventFile(dir, "game-select.txt")
	if !ok {
		t.Fatal("expected a usable event")
	}
	want := state.Event{
		Type:     state.EventGameSelect,
		System:   "snes",
		GamePath: "Super Mario World.zip",
		GameName: "Super Mario World",
	}
	if ev != want {
		t.Errorf("got %+v, want %+v", ev, want)
	}
}

func TestParseMissingAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()

	if _, ok := ParseEventFile(dir, "game-select.txt"); ok {
		t.Error("missing file must not produce an event")
	}

	writeSignal(t, dir, "system-select.txt", "")
	if _, ok := ParseEventFile(dir, "system-select.txt"); ok {
		t.Error("empty system-select must not produce an event")
	}

	// Argument-free events fire even with an empty body.
	writeSignal(t, dir, "game-end.txt", "")
	ev, ok := ParseEventFile(dir, "game-end.txt")
	if !ok || ev.Type != state.EventGameEnd {
		t.Errorf("game-end should fire on an empty file, got %+v ok=%t", ev, ok)
	}
}

func TestParseScreensaverEndReason(t *testing.T) {
	dir := t.TempDir()

	writeSignal(t, dir, "screensaver-end.txt", "game-jump\n")
	ev, ok := ParseEventFile(dir, "screensaver-end.txt")
	if !ok || ev.Reason != "game-jump" {
		t.Errorf("got %+v ok=%t", ev, ok)
	}

	writeSignal(t, dir, "screensaver-end.txt", "")
	ev, _ = ParseEventFile(dir, "screensaver-end.txt")
	if ev.Reason != "cancel" {
		t.Errorf("empty reason should default to cancel, got %q", ev.Reason)
	}
}

func TestParseGameStartCarriesOwningSystem(t *testing.T) {
	dir := t.TempDir()
	writeSignal(t, dir, "game-start.txt", "nes\nsmb3.zip\n")

	ev, ok := ParseEventFile(dir, "game-start.txt")
	if !ok {
		t.Fatal("expected event")
	}
	if ev.System != "nes" || ev.GamePath != "smb3.zip" {
		t.Errorf("got %+v", ev)
	}
}

func TestReadFactsMissingFilesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	writeSignal(t, dir, "system.txt", "snes\n")

	f := ReadFacts(dir)
	if f.System != "snes" {
		t.Errorf("system: got %q", f.System)
	}
	if f.GamePath != "" || f.GameName != "" || f.GameSystem != "" {
		t.Errorf("missing facts should be empty, got %+v", f)
	}
}

func TestSeedState(t *testing.T) {
	tests := []struct {
		name  string
		facts Facts
		want  state.AppState
	}{
		{
			name:  "system and game",
			facts: Facts{System: "snes", GamePath: "smw.zip", GameName: "SMW"},
			want:  state.GameBrowsing{SystemName: "snes", GamePath: "smw.zip", GameName: "SMW"},
		},
		{
			name:  "system only",
			facts: Facts{System: "snes"},
			want:  state.SystemBrowsing{SystemName: "snes"},
		},
		{
			name:  "nothing yet",
			facts: Facts{},
			want:  state.SystemBrowsing{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.facts.SeedState(); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsSignalFile(t *testing.T) {
	for _, name := range []string{"game-select.txt", "system.txt", "screensaver-end.txt"} {
		if !IsSignalFile(name) {
			t.Errorf("%s should be recognized", name)
		}
	}
	for _, name := range []string{"notes.txt", "game-select.bak", ".DS_Store"} {
		if IsSignalFile(name) {
			t.Errorf("%s should not be recognized", name)
		}
	}
}
