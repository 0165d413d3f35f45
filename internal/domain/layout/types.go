// Package layout defines the persisted widget and page model for the
// companion display: positioned overlay widgets grouped into pages, each page
// carrying one background configuration.
package layout

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ContentType identifies the media category a widget or background shows.
type ContentType string

const (
	ContentMarquee       ContentType = "marquee"
	ContentCover         ContentType = "cover"
	ContentBox3D         ContentType = "box3d"
	ContentBackCover     ContentType = "backcover"
	ContentMixImage      ContentType = "miximage"
	ContentPhysicalMedia ContentType = "physicalmedia"
	ContentScreenshot    ContentType = "screenshot"
	ContentFanArt        ContentType = "fanart"
	ContentTitleScreen   ContentType = "titlescreen"
	ContentSystemLogo    ContentType = "systemlogo"
	ContentDescription   ContentType = "description"
	ContentVideo         ContentType = "video"
)

// Background-only pseudo types. These never appear on widgets.
const (
	BackgroundSolidColor ContentType = "solidcolor"
	BackgroundCustomPath ContentType = "custompath"
	BackgroundRandom     ContentType = "random"
)

// ScalePolicy controls how media is fitted into the widget rectangle.
type ScalePolicy string

const (
	ScaleFit  ScalePolicy = "fit"
	ScaleCrop ScalePolicy = "crop"
)

// ViewContext marks whether a widget belongs to the game view or the
// system view.
type ViewContext string

const (
	ContextGame   ViewContext = "game"
	ContextSystem ViewContext = "system"
)

// MediaSlot selects which saved variant of a media category to use.
// Slot 0 is the canonical asset; higher slots are user-saved alternates.
type MediaSlot int

// DefaultSlot is the canonical asset for a category.
const DefaultSlot MediaSlot = 0

// IsDefault reports whether the slot refers to the canonical asset.
func (s MediaSlot) IsDefault() bool { return s == DefaultSlot }

// Suffix returns the filename suffix appended to the game identifier for
// alternate slots. The default slot has no suffix.
func (s MediaSlot) Suffix() string {
	if s.IsDefault() {
		return ""
	}
	return "-alt" + strconv.Itoa(int(s))
}

// ScreenSize is the renderer's display size in pixels.
type ScreenSize struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Geometry stores both screen-relative percentages and derived absolute
// pixels. Percentages are authoritative; pixels are recomputed for the
// current screen size and never persisted as source of truth.
type Geometry struct {
	XPct float64 `yaml:"x_pct" json:"xPct"`
	YPct float64 `yaml:"y_pct" json:"yPct"`
	WPct float64 `yaml:"w_pct" json:"wPct"`
	HPct float64 `yaml:"h_pct" json:"hPct"`

	X int `yaml:"-" json:"x"`
	Y int `yaml:"-" json:"y"`
	W int `yaml:"-" json:"w"`
	H int `yaml:"-" json:"h"`
}

// ToPixels derives the absolute pixel rectangle for the given screen size.
func (g Geometry) ToPixels(screen ScreenSize) Geometry {
	g.X = int(math.Round(g.XPct / 100 * float64(screen.Width)))
	g.Y = int(math.Round(g.YPct / 100 * float64(screen.Height)))
	g.W = int(math.Round(g.WPct / 100 * float64(screen.Width)))
	g.H = int(math.Round(g.HPct / 100 * float64(screen.Height)))
	return g
}

// OverlayWidget is one positioned media element on a page.
type OverlayWidget struct {
	ID       string      `yaml:"id" json:"id"`
	Type     ContentType `yaml:"type" json:"type"`
	Geometry Geometry    `yaml:"geometry" json:"geometry"`
	ZOrder   int         `yaml:"z_order" json:"zOrder"`
	Scale    ScalePolicy `yaml:"scale" json:"scale"`
	Slot     MediaSlot   `yaml:"slot" json:"slot"`
	Context  ViewContext `yaml:"context" json:"context"`
	Required bool        `yaml:"required,omitempty" json:"required,omitempty"`
}

// NewWidget creates a widget with a fresh stable ID.
func NewWidget(ct ContentType, ctx ViewContext) OverlayWidget {
	return OverlayWidget{
		ID:      uuid.New().String(),
		Type:    ct,
		Scale:   ScaleFit,
		Slot:    DefaultSlot,
		Context: ctx,
	}
}

// PageBackground is the background configuration shared by all widgets on a
// page.
type PageBackground struct {
	Type       ContentType   `yaml:"type" json:"type"`
	Slot       MediaSlot     `yaml:"slot" json:"slot"`
	Color      string        `yaml:"color,omitempty" json:"color,omitempty"`
	CustomPath string        `yaml:"custom_path,omitempty" json:"customPath,omitempty"`
	Opacity    float64       `yaml:"opacity" json:"opacity"`
	BlurRadius int           `yaml:"blur_radius" json:"blurRadius"`
	Swap       bool          `yaml:"swap" json:"swap"`
	PanZoom    bool          `yaml:"pan_zoom" json:"panZoom"`
	Mute       bool          `yaml:"mute" json:"mute"`
	VideoDelay time.Duration `yaml:"video_delay" json:"videoDelay"`
}

// WidgetPage is an ordered widget collection sharing one background.
type WidgetPage struct {
	ID         string         `yaml:"id" json:"id"`
	Name       string         `yaml:"name,omitempty" json:"name,omitempty"`
	Background PageBackground `yaml:"background" json:"background"`
	Widgets    []OverlayWidget `yaml:"widgets" json:"widgets"`
}

// NewPage creates an empty page with a fresh ID and a fanart background.
func NewPage(name string) WidgetPage {
	return WidgetPage{
		ID:   uuid.New().String(),
		Name: name,
		Background: PageBackground{
			Type:    ContentFanArt,
			Opacity: 1.0,
		},
	}
}

// Layout is the full persisted page carousel. Exactly one page is current.
type Layout struct {
	Pages       []WidgetPage `yaml:"pages" json:"pages"`
	CurrentPage int          `yaml:"current_page" json:"currentPage"`
}

// Current returns the active page, falling back to page zero when the stored
// index is stale (for example after a page was deleted).
func (l *Layout) Current() *WidgetPage {
	if len(l.Pages) == 0 {
		return nil
	}
	if l.CurrentPage < 0 || l.CurrentPage >= len(l.Pages) {
		l.CurrentPage = 0
	}
	return &l.Pages[l.CurrentPage]
}
