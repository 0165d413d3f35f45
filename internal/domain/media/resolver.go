package media

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/marquessv/sidecast/internal/domain/gamelist"
	"github.com/marquessv/sidecast/internal/domain/layout"
	"github.com/marquessv/sidecast/internal/domain/state"
)

// logoExtensions is the probe order for user-supplied system logo overrides.
var logoExtensions = []string{".svg", ".png", ".webp", ".jpg", ".jpeg", ".gif"}

// backgroundFallback is the category order tried when the configured
// background category has no asset for the current game.
var backgroundFallback = []layout.ContentType{
	layout.ContentFanArt,
	layout.ContentScreenshot,
	layout.ContentTitleScreen,
	layout.ContentMixImage,
}

// ResolvedWidget is a widget with its content resolved to a concrete file,
// in-memory text, or a built-in logo token, and its geometry in pixels.
type ResolvedWidget struct {
	Widget  layout.OverlayWidget `json:"widget"`
	Path    string               `json:"path,omitempty"`
	Text    string               `json:"text,omitempty"`
	Builtin string               `json:"builtin,omitempty"`
}

// PageKind is what the background surface ends up showing.
type PageKind string

const (
	PageImage PageKind = "image"
	PageVideo PageKind = "video"
	PageSolid PageKind = "solid"
)

// PageResolution is the fully resolved background for the current page and
// state.
type PageResolution struct {
	Kind       PageKind              `json:"kind"`
	ImagePath  string                `json:"imagePath,omitempty"`
	VideoPath  string                `json:"videoPath,omitempty"`
	Color      string                `json:"color,omitempty"`
	Background layout.PageBackground `json:"background"`
	SystemID   string                `json:"systemId"`
	GameID     string                `json:"gameId"`
	GameView   bool                  `json:"gameView"`
}

// Fingerprint identifies the effective (system, game, page-visual-settings)
// tuple. The binder reuses the previous surface when it is unchanged.
func (p PageResolution) Fingerprint() string {
	b := p.Background
	return fmt.Sprintf("%s|%s|%s|%d|%s|%s|%.3f|%d|%t|%t|%t|%d",
		p.SystemID, p.GameID, b.Type, b.Slot, b.Color, b.CustomPath,
		b.Opacity, b.BlurRadius, b.Swap, b.PanZoom, b.Mute, b.VideoDelay)
}

// Resolver turns declarative widget and page definitions into concrete
// content, building on the locator and the gamelist store.
type Resolver struct {
	locator   *Locator
	gamelists *gamelist.Store
	logoDir   string
	pick      func(n int) int
}

// NewResolver creates a resolver. logoDir holds user-supplied system logo
// overrides named <system>.<ext>; it may be empty.
func NewResolver(locator *Locator, gamelists *gamelist.Store, logoDir string) *Resolver {
	return &Resolver{
		locator:   locator,
		gamelists: gamelists,
		logoDir:   logoDir,
		pick:      rand.Intn,
	}
}

// ResolveWidget resolves one widget for the given browsing position. The
// second return value reports a required widget that resolved to nothing;
// callers decide whether to hide or warn. Absence never produces an error.
func (r *Resolver) ResolveWidget(w layout.OverlayWidget, systemID, gameID string, screen layout.ScreenSize) (ResolvedWidget, bool) {
	out := ResolvedWidget{Widget: w}
	out.Widget.Geometry = w.Geometry.ToPixels(screen)

	if systemID == "" {
		// Nothing to resolve yet; content stays empty.
		return out, false
	}

	switch w.Type {
	case layout.ContentSystemLogo:
		out.Path, out.Builtin = r.resolveSystemLogo(systemID)

	case layout.ContentDescription:
		out.Text = r.gamelists.Description(systemID, gameID)

	default:
		out.Path = r.locator.Find(w.Type, systemID, gameID, w.Slot)
	}

	missing := w.Required && out.Path == "" && out.Text == "" && out.Builtin == ""
	if missing {
		log.Debug().
			Str("widget", w.ID).
			Str("type", string(w.Type)).
			Str("system", systemID).
			Str("game", gameID).
			Msg("Required widget resolved empty")
	}
	return out, missing
}

// resolveSystemLogo probes the override directory, falling back to the
// built-in asset token. Never a hard failure.
func (r *Resolver) resolveSystemLogo(systemID string) (path, builtin string) {
	if r.logoDir != "" {
		for _, ext := range logoExtensions {
			p := filepath.Join(r.logoDir, systemID+ext)
			if fileExists(p) {
				return p, ""
			}
		}
	}
	return "", "builtin:" + systemID
}

// ResolvePage resolves the page background for the current state.
func (r *Resolver) ResolvePage(bg layout.PageBackground, st state.AppState) PageResolution {
	systemID, gameID, gameView := browsingPosition(st)

	res := PageResolution{
		Background: bg,
		SystemID:   systemID,
		GameID:     gameID,
		GameView:   gameView,
	}

	switch bg.Type {
	case layout.BackgroundSolidColor:
		res.Kind = PageSolid
		res.Color = bg.Color
		return res

	case layout.BackgroundCustomPath:
		// Fixed path bypasses all lookup.
		if isVideoFile(bg.CustomPath) {
			res.Kind = PageVideo
			res.VideoPath = bg.CustomPath
		} else {
			res.Kind = PageImage
			res.ImagePath = bg.CustomPath
		}
		return res

	case layout.BackgroundRandom:
		res.Kind = PageImage
		res.ImagePath = r.randomSystemImage(systemID)
		return res
	}

	if bg.Type == layout.ContentVideo {
		res.VideoPath = r.locator.Find(layout.ContentVideo, systemID, gameID, bg.Slot)
		// The interim image shown before (or instead of) the video.
		res.ImagePath = r.imageWithFallback(layout.ContentScreenshot, bg.Slot, systemID, gameID)
		if res.VideoPath != "" {
			res.Kind = PageVideo
		} else {
			res.Kind = PageImage
		}
		return res
	}

	res.Kind = PageImage
	if gameID != "" {
		res.ImagePath = r.imageWithFallback(bg.Type, bg.Slot, systemID, gameID)
	} else {
		// System-level browsing shows a random sample from the system's
		// media folders.
		res.ImagePath = r.randomSystemImage(systemID)
	}
	return res
}

// imageWithFallback tries the preferred category first, then the standard
// fallback chain, returning "" only when every category is empty.
func (r *Resolver) imageWithFallback(preferred layout.ContentType, slot layout.MediaSlot, systemID, gameID string) string {
	if p := r.locator.Find(preferred, systemID, gameID, slot); p != "" {
		return p
	}
	// Alternate slots fall back to the canonical asset of the same category
	// before switching categories.
	if !slot.IsDefault() {
		if p := r.locator.Find(preferred, systemID, gameID, layout.DefaultSlot); p != "" {
			return p
		}
	}
	for _, ct := range backgroundFallback {
		if ct == preferred {
			continue
		}
		if p := r.locator.Find(ct, systemID, gameID, layout.DefaultSlot); p != "" {
			return p
		}
	}
	return ""
}

// randomSystemImage samples uniformly from fanart, then screenshots, of the
// given system.
func (r *Resolver) randomSystemImage(systemID string) string {
	if p := r.locator.FindRandom(layout.ContentFanArt, systemID, r.pick); p != "" {
		return p
	}
	return r.locator.FindRandom(layout.ContentScreenshot, systemID, r.pick)
}

// browsingPosition extracts (system, game, in-game-view) from the state.
func browsingPosition(st state.AppState) (systemID, gameID string, gameView bool) {
	switch s := st.(type) {
	case state.SystemBrowsing:
		return s.SystemName, "", false
	case state.GameBrowsing:
		return s.SystemName, s.GamePath, true
	case state.GamePlaying:
		return s.SystemName, s.GamePath, false
	case state.Screensaver:
		if s.CurrentGame != nil {
			return s.CurrentGame.SystemName, s.CurrentGame.GamePath, false
		}
		return s.Previous.System(), "", false
	default:
		return "", "", false
	}
}

func isVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range VideoExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
