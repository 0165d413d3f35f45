package gamelist

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleGamelist = `<?xml version="1.0"?>
<gameList>
  <game>
    <path>./Super Mario World.zip</path>
    <name>Super Mario World</name>
    <desc>Mario's first outing on the SNES.</desc>
  </game>
  <game>
    <path>./subdir/Zelda.zip</path>
    <name>The Legend of Zelda</name>
    <desc>Link to the past.</desc>
  </game>
  <game>
    <path>./NoDesc.zip</path>
    <name>No Description</name>
  </game>
</gameList>
`

func writeGamelist(t *testing.T, dir, system, content string) {
	t.Helper()
	sysDir := filepath.Join(dir, system)
	if err := os.MkdirAll(sysDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sysDir, "gamelist.xml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLookupMatchesWithAndWithoutDotSlash(t *testing.T) {
	dir := t.TempDir()
	writeGamelist(t, dir, "snes", sampleGamelist)
	s := NewStore(dir)

	for _, path := range []string{"Super Mario World.zip", "./Super Mario World.zip"} {
		e, ok := s.Lookup("snes", path)
		if !ok {
			t.Fatalf("Lookup(%q) should match", path)
		}
		if e.Desc != "Mario's first outing on the SNES." {
			t.Errorf("unexpected desc: %q", e.Desc)
		}
	}
}

func TestLookupSubfolderPath(t *testing.T) {
	dir := t.TempDir()
	writeGamelist(t, dir, "snes", sampleGamelist)
	s := NewStore(dir)

	if name := s.DisplayName("snes", "subdir/Zelda.zip"); name != "The Legend of Zelda" {
		t.Errorf("got %q", name)
	}
}

func TestMissingDocumentAndEntryAreNotErrors(t *testing.T) {
	dir := t.TempDir()
	writeGamelist(t, dir, "snes", sampleGamelist)
	s := NewStore(dir)

	if desc := s.Description("gba", "anything.gba"); desc != "" {
		t.Errorf("missing document should yield empty desc, got %q", desc)
	}
	if desc := s.Description("snes", "Unknown.zip"); desc != "" {
		t.Errorf("missing entry should yield empty desc, got %q", desc)
	}
	if desc := s.Description("snes", "NoDesc.zip"); desc != "" {
		t.Errorf("entry without desc should yield empty desc, got %q", desc)
	}
}

func TestCorruptDocumentYieldsNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeGamelist(t, dir, "snes", "<gameList><game></gameLis")
	s := NewStore(dir)

	if _, ok := s.Lookup("snes", "whatever.zip"); ok {
		t.Error("corrupt gamelist should not match anything")
	}
}
