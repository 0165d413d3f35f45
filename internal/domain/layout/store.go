package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Store persists the widget layout to a YAML file. Every edit is written
// through immediately so a crash never loses more than the in-flight change.
type Store struct {
	mu       sync.RWMutex
	filePath string
	layout   Layout
}

// NewStore creates a store backed by the given file and loads any existing
// layout. A missing file yields a single default page rather than an error.
func NewStore(filePath string) (*Store, error) {
	s := &Store{filePath: filePath}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Layout returns a copy of the current layout.
func (s *Store) Layout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.layout
	out.Pages = make([]WidgetPage, len(s.layout.Pages))
	copy(out.Pages, s.layout.Pages)
	for i := range out.Pages {
		widgets := make([]OverlayWidget, len(s.layout.Pages[i].Widgets))
		copy(widgets, s.layout.Pages[i].Widgets)
		out.Pages[i].Widgets = widgets
	}
	return out
}

// CurrentPage returns a copy of the active page.
func (s *Store) CurrentPage() WidgetPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.layout.Current()
	if page == nil {
		return NewPage("default")
	}
	out := *page
	out.Widgets = make([]OverlayWidget, len(page.Widgets))
	copy(out.Widgets, page.Widgets)
	return out
}

// SetCurrentPage switches the carousel to the given page index and persists
// the selection. Out-of-range indices wrap.
func (s *Store) SetCurrentPage(index int) (WidgetPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.layout.Pages) == 0 {
		return NewPage("default"), errors.New("layout has no pages")
	}
	n := len(s.layout.Pages)
	s.layout.CurrentPage = ((index % n) + n) % n
	if err := s.saveLocked(); err != nil {
		return WidgetPage{}, err
	}
	return s.layout.Pages[s.layout.CurrentPage], nil
}

// Replace swaps in an entire layout (used by the editing surface after a
// batch of changes) and persists it.
func (s *Store) Replace(l Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layout = l
	return s.saveLocked()
}

// UpsertWidget adds or updates a widget on the page that owns it, matched by
// stable widget ID, and persists the change.
func (s *Store) UpsertWidget(pageID string, w OverlayWidget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.layout.Pages {
		if s.layout.Pages[i].ID != pageID {
			continue
		}
		page := &s.layout.Pages[i]
		for j := range page.Widgets {
			if page.Widgets[j].ID == w.ID {
				page.Widgets[j] = w
				return s.saveLocked()
			}
		}
		page.Widgets = append(page.Widgets, w)
		return s.saveLocked()
	}
	return fmt.Errorf("page %s not found", pageID)
}

// load reads the layout file. Absence is not an error: a fresh install gets
// one empty default page.
func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.layout = Layout{Pages: []WidgetPage{NewPage("default")}}
			log.Info().Str("path", s.filePath).Msg("No layout file, starting with default page")
			return nil
		}
		return fmt.Errorf("failed to read layout: %w", err)
	}

	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("failed to parse layout: %w", err)
	}
	if len(l.Pages) == 0 {
		l.Pages = []WidgetPage{NewPage("default")}
	}
	s.layout = l

	log.Info().
		Str("path", s.filePath).
		Int("pages", len(l.Pages)).
		Msg("Layout loaded")
	return nil
}

// saveLocked writes the layout atomically via a temp file rename.
// Caller must hold the lock.
func (s *Store) saveLocked() error {
	data, err := yaml.Marshal(&s.layout)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace layout: %w", err)
	}

	log.Debug().Str("path", s.filePath).Msg("Layout saved")
	return nil
}
