// Package gamelist reads the frontend's per-system gamelist documents and
// answers description lookups for game paths.
package gamelist

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// document mirrors the frontend's gamelist.xml structure. Only the fields the
// companion consumes are mapped.
type document struct {
	XMLName xml.Name `xml:"gameList"`
	Games   []entry  `xml:"game"`
}

type entry struct {
	Path string `xml:"path"`
	Name string `xml:"name"`
	Desc string `xml:"desc"`
}

type cached struct {
	doc     *document
	modTime time.Time
}

// Store loads and caches gamelist documents. The layout on disk is
// <dir>/<system>/gamelist.xml. Parsed documents are kept in memory and
// invalidated by file modification time.
type Store struct {
	mu  sync.Mutex
	dir string
	doc map[string]cached
}

// NewStore creates a store rooted at the gamelists directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir, doc: make(map[string]cached)}
}

// Entry holds the gamelist fields for one game.
type Entry struct {
	Name string
	Desc string
}

// Lookup finds the gamelist entry whose path matches the given game path.
// Absence of the document or the entry yields (Entry{}, false), never an
// error: a missing description is an expected condition.
func (s *Store) Lookup(system, gamePath string) (Entry, bool) {
	if system == "" || gamePath == "" {
		return Entry{}, false
	}

	doc := s.load(system)
	if doc == nil {
		return Entry{}, false
	}

	want := normalizePath(gamePath)
	for _, g := range doc.Games {
		if normalizePath(g.Path) == want {
			return Entry{Name: g.Name, Desc: g.Desc}, true
		}
	}
	return Entry{}, false
}

// Description returns the free-text description for a game, or "" when the
// document or entry is absent.
func (s *Store) Description(system, gamePath string) string {
	e, _ := s.Lookup(system, gamePath)
	return e.Desc
}

// DisplayName returns the gamelist display name for a game, or "" when
// unknown.
func (s *Store) DisplayName(system, gamePath string) string {
	e, _ := s.Lookup(system, gamePath)
	return e.Name
}

func (s *Store) load(system string) *document {
	path := filepath.Join(s.dir, system, "gamelist.xml")

	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.doc[system]; ok && c.modTime.Equal(info.ModTime()) {
		return c.doc
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Err(err).Str("system", system).Msg("Failed to read gamelist")
		return nil
	}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("system", system).Msg("Failed to parse gamelist")
		return nil
	}

	s.doc[system] = cached{doc: &doc, modTime: info.ModTime()}
	log.Debug().Str("system", system).Int("games", len(doc.Games)).Msg("Gamelist loaded")
	return &doc
}

// normalizePath reduces both sides of a path match to a comparable form:
// forward slashes, no leading "./", case preserved.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}
