// Package media resolves (system, game) identifiers into concrete media
// files via a layered fallback search over the downloaded-media directory.
package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/marquessv/sidecast/internal/domain/layout"
)

// categoryDirs maps content types to their subdirectory under
// <mediaDir>/<system>/. Description and system logo are not file categories
// handled here.
var categoryDirs = map[layout.ContentType]string{
	layout.ContentMarquee:       "marquees",
	layout.ContentCover:         "covers",
	layout.ContentBox3D:         "3dboxes",
	layout.ContentBackCover:     "backcovers",
	layout.ContentMixImage:      "miximages",
	layout.ContentPhysicalMedia: "physicalmedia",
	layout.ContentScreenshot:    "screenshots",
	layout.ContentFanArt:        "fanart",
	layout.ContentTitleScreen:   "titlescreens",
	layout.ContentVideo:         "videos",
}

// ImageExtensions are the accepted image file extensions, in probe order.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// VideoExtensions are the accepted video file extensions, in probe order.
var VideoExtensions = []string{".mp4", ".mkv", ".avi", ".wmv", ".mov", ".webm"}

// Locator searches the media root for assets of a given category.
type Locator struct {
	mediaDir string
}

// NewLocator creates a locator rooted at the downloaded-media directory.
func NewLocator(mediaDir string) *Locator {
	return &Locator{mediaDir: mediaDir}
}

// SanitizeName reduces a frontend-reported game identifier to the lookup
// key: backslash escapes removed, then the substring after the last forward
// slash.
func SanitizeName(raw string) string {
	s := strings.ReplaceAll(raw, "\\", "")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// stripExt drops the final extension from a game filename.
func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Find returns the path of the first matching asset for the category, or ""
// when nothing matches. "" is "no asset", never an error.
//
// gameID may carry a subfolder prefix. The subfolder-qualified directory is
// searched first, then the category root, each trying the sanitized name and
// the raw name across the category's extension list.
func (l *Locator) Find(category layout.ContentType, systemID, gameID string, slot layout.MediaSlot) string {
	catDir, ok := categoryDirs[category]
	if !ok {
		log.Debug().Str("category", string(category)).Msg("Category has no media directory")
		return ""
	}
	if systemID == "" || gameID == "" {
		return ""
	}

	root := filepath.Join(l.mediaDir, systemID, catDir)
	exts := extensionsFor(category)
	names := candidateNames(gameID, slot)

	// Subfolder-qualified directory first.
	if sub := subfolderOf(gameID); sub != "" {
		if p := probe(filepath.Join(root, sub), names, exts); p != "" {
			return p
		}
	}

	return probe(root, names, exts)
}

// FindRandom picks a uniformly random asset from the category directory of a
// system, including subfolders. Returns "" when the directory is empty or
// missing.
func (l *Locator) FindRandom(category layout.ContentType, systemID string, pick func(n int) int) string {
	catDir, ok := categoryDirs[category]
	if !ok || systemID == "" {
		return ""
	}

	root := filepath.Join(l.mediaDir, systemID, catDir)
	exts := extensionsFor(category)

	var files []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		for _, e := range exts {
			if ext == e {
				files = append(files, path)
				break
			}
		}
		return nil
	})

	if len(files) == 0 {
		return ""
	}
	return files[pick(len(files))]
}

// candidateNames returns the lookup names in priority order: sanitized name
// without extension, then the raw name with escape characters intact (some
// assets are saved under the unsanitized name). Alternate slots append their
// suffix.
func candidateNames(gameID string, slot layout.MediaSlot) []string {
	sanitized := stripExt(SanitizeName(gameID))

	raw := gameID
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	raw = stripExt(raw)

	names := []string{sanitized + slot.Suffix()}
	if raw != sanitized {
		names = append(names, raw+slot.Suffix())
	}
	return names
}

func subfolderOf(gameID string) string {
	clean := strings.ReplaceAll(gameID, "\\", "")
	if i := strings.LastIndex(clean, "/"); i > 0 {
		return clean[:i]
	}
	return ""
}

func extensionsFor(category layout.ContentType) []string {
	if category == layout.ContentVideo {
		return VideoExtensions
	}
	return ImageExtensions
}

// probe checks names × extensions in one directory, first hit wins.
func probe(dir string, names, exts []string) string {
	for _, name := range names {
		for _, ext := range exts {
			path := filepath.Join(dir, name+ext)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
