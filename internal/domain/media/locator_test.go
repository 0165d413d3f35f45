package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marquessv/sidecast/internal/domain/layout"
)

// touch creates an empty file, making parent directories as needed.
func touch(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Super Mario World.zip", "Super Mario World.zip"},
		{"subdir/Game.zip", "Game.zip"},
		{"a/b/Game.zip", "Game.zip"},
		{`Game \[USA\].zip`, "Game [USA].zip"},
		{`sub\/dir/Game.zip`, "Game.zip"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.raw); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFindChecksRootForPlainName(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "snes", "screenshots", "Super Mario World.png")

	l := NewLocator(dir)
	got := l.Find(layout.ContentScreenshot, "snes", "Super Mario World.zip", layout.DefaultSlot)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFindSubfolderBeforeRoot(t *testing.T) {
	dir := t.TempDir()
	inSub := touch(t, dir, "snes", "covers", "hacks", "Kaizo.jpg")
	touch(t, dir, "snes", "covers", "Kaizo.jpg")

	l := NewLocator(dir)
	got := l.Find(layout.ContentCover, "snes", "hacks/Kaizo.smc", layout.DefaultSlot)
	if got != inSub {
		t.Errorf("subfolder asset must win: got %q, want %q", got, inSub)
	}
}

func TestFindSubfolderFallsBackToRoot(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "snes", "covers", "Kaizo.jpg")

	l := NewLocator(dir)
	got := l.Find(layout.ContentCover, "snes", "hacks/Kaizo.smc", layout.DefaultSlot)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFindReturnsEmptyWhenNothingMatches(t *testing.T) {
	l := NewLocator(t.TempDir())
	if got := l.Find(layout.ContentFanArt, "snes", "nothing.zip", layout.DefaultSlot); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestFindRawNameVariant(t *testing.T) {
	dir := t.TempDir()
	// Asset stored under the raw, escaped name.
	want := touch(t, dir, "snes", "marquees", `Game \[USA\].png`)

	l := NewLocator(dir)
	got := l.Find(layout.ContentMarquee, "snes", `Game \[USA\].zip`, layout.DefaultSlot)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFindSanitizedPreferredOverRaw(t *testing.T) {
	dir := t.TempDir()
	sanitized := touch(t, dir, "snes", "marquees", "Game [USA].png")
	touch(t, dir, "snes", "marquees", `Game \[USA\].png`)

	l := NewLocator(dir)
	got := l.Find(layout.ContentMarquee, "snes", `Game \[USA\].zip`, layout.DefaultSlot)
	if got != sanitized {
		t.Errorf("sanitized variant must win: got %q", got)
	}
}

func TestFindAlternateSlotSuffix(t *testing.T) {
	dir := t.TempDir()
	alt := touch(t, dir, "snes", "covers", "Zelda-alt2.png")
	touch(t, dir, "snes", "covers", "Zelda.png")

	l := NewLocator(dir)
	got := l.Find(layout.ContentCover, "snes", "Zelda.zip", layout.MediaSlot(2))
	if got != alt {
		t.Errorf("got %q, want %q", got, alt)
	}
}

func TestFindVideoUsesVideoExtensions(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "snes", "videos", "Zelda.mkv")
	touch(t, dir, "snes", "videos", "Zelda.txt")

	l := NewLocator(dir)
	got := l.Find(layout.ContentVideo, "snes", "Zelda.zip", layout.DefaultSlot)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFindUnknownCategory(t *testing.T) {
	l := NewLocator(t.TempDir())
	if got := l.Find(layout.ContentDescription, "snes", "Zelda.zip", layout.DefaultSlot); got != "" {
		t.Errorf("text categories are not resolved here, got %q", got)
	}
}

func TestFindRandomSamplesSubfolders(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "snes", "fanart", "a.png")
	b := touch(t, dir, "snes", "fanart", "deep", "b.jpg")
	touch(t, dir, "snes", "fanart", "notes.txt")

	l := NewLocator(dir)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		idx := i
		got := l.FindRandom(layout.ContentFanArt, "snes", func(n int) int {
			if n != 2 {
				t.Fatalf("expected 2 candidates, got %d", n)
			}
			return idx
		})
		seen[got] = true
	}
	if !seen[a] || !seen[b] {
		t.Errorf("expected both files reachable, saw %v", seen)
	}
}

func TestFindRandomEmptyDirectory(t *testing.T) {
	l := NewLocator(t.TempDir())
	got := l.FindRandom(layout.ContentFanArt, "snes", func(n int) int { return 0 })
	if got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}
