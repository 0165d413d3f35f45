package layout

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRoundTripSlotsAndGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")

	page := NewPage("game view")
	page.Background = PageBackground{
		Type:       ContentVideo,
		Slot:       MediaSlot(2),
		Opacity:    0.85,
		BlurRadius: 12,
		Mute:       true,
		VideoDelay: 1500 * time.Millisecond,
	}

	marquee := NewWidget(ContentMarquee, ContextGame)
	marquee.Geometry = Geometry{XPct: 5.5, YPct: 2.25, WPct: 40, HPct: 12.75}
	marquee.Slot = DefaultSlot

	cover := NewWidget(ContentCover, ContextGame)
	cover.Geometry = Geometry{XPct: 60, YPct: 10, WPct: 25, HPct: 45}
	cover.Slot = MediaSlot(3)
	cover.Required = true

	page.Widgets = []OverlayWidget{marquee, cover}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Replace(Layout{Pages: []WidgetPage{page}, CurrentPage: 0}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	// Reload from disk into a fresh store.
	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore reload: %v", err)
	}
	got := reloaded.Layout()

	if len(got.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(got.Pages))
	}
	gp := got.Pages[0]
	if gp.Background.Slot != MediaSlot(2) {
		t.Errorf("background slot: got %d, want 2", gp.Background.Slot)
	}
	if gp.Background.VideoDelay != 1500*time.Millisecond {
		t.Errorf("video delay: got %v, want 1.5s", gp.Background.VideoDelay)
	}
	if !gp.Background.Mute {
		t.Error("background mute flag lost")
	}
	if len(gp.Widgets) != 2 {
		t.Fatalf("expected 2 widgets, got %d", len(gp.Widgets))
	}
	if gp.Widgets[0].ID != marquee.ID || gp.Widgets[1].ID != cover.ID {
		t.Error("widget IDs or order changed across reload")
	}
	if gp.Widgets[1].Slot != MediaSlot(3) {
		t.Errorf("widget slot: got %d, want 3", gp.Widgets[1].Slot)
	}
	if !gp.Widgets[1].Required {
		t.Error("required flag lost")
	}

	wantGeo := marquee.Geometry
	gotGeo := gp.Widgets[0].Geometry
	for _, pair := range [][2]float64{
		{gotGeo.XPct, wantGeo.XPct},
		{gotGeo.YPct, wantGeo.YPct},
		{gotGeo.WPct, wantGeo.WPct},
		{gotGeo.HPct, wantGeo.HPct},
	} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Errorf("geometry percentage drifted: got %v, want %v", pair[0], pair[1])
		}
	}
}

func TestStoreMissingFileStartsWithDefaultPage(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "nope", "layout.yaml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	l := store.Layout()
	if len(l.Pages) != 1 {
		t.Fatalf("expected 1 default page, got %d", len(l.Pages))
	}
}

func TestSetCurrentPageWraps(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "layout.yaml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	l := Layout{Pages: []WidgetPage{NewPage("a"), NewPage("b"), NewPage("c")}}
	if err := store.Replace(l); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	page, err := store.SetCurrentPage(4)
	if err != nil {
		t.Fatalf("SetCurrentPage: %v", err)
	}
	if page.Name != "b" {
		t.Errorf("index 4 of 3 pages should wrap to 'b', got %q", page.Name)
	}

	page, err = store.SetCurrentPage(-1)
	if err != nil {
		t.Fatalf("SetCurrentPage: %v", err)
	}
	if page.Name != "c" {
		t.Errorf("index -1 should wrap to 'c', got %q", page.Name)
	}
}

func TestGeometryToPixels(t *testing.T) {
	g := Geometry{XPct: 50, YPct: 25, WPct: 10, HPct: 10}
	px := g.ToPixels(ScreenSize{Width: 1920, Height: 1080})

	if px.X != 960 || px.Y != 270 || px.W != 192 || px.H != 108 {
		t.Errorf("unexpected pixel rect: %d,%d %dx%d", px.X, px.Y, px.W, px.H)
	}
	// Percentages stay authoritative.
	if px.XPct != 50 {
		t.Error("ToPixels must not modify percentages")
	}
}

func TestMediaSlotSuffix(t *testing.T) {
	if DefaultSlot.Suffix() != "" {
		t.Errorf("default slot suffix should be empty, got %q", DefaultSlot.Suffix())
	}
	if MediaSlot(2).Suffix() != "-alt2" {
		t.Errorf("alternate slot suffix: got %q, want -alt2", MediaSlot(2).Suffix())
	}
}
