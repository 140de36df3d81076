// Package session provides the local review-session store: photos, class
// lists, per-photo decisions, and region annotations, persisted as one
// JSON file per session.
package session

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"defect-review/internal/region"

	"github.com/google/uuid"
)

// Decision is the operator's verdict for one photo.
type Decision string

const (
	DecisionNone   Decision = ""
	DecisionOK     Decision = "ok"
	DecisionDefect Decision = "defect"
)

// Photo is one photo entry in a session.
type Photo struct {
	ID       string          `json:"photo_id"`
	Filename string          `json:"filename"`
	Decision Decision        `json:"decision,omitempty"`
	Regions  []region.Region `json:"bboxes"`
}

// Session is a review session: an ordered set of photos with annotations
// and the class list they draw from.
type Session struct {
	ID      string   `json:"session_id"`
	Classes []string `json:"classes"`
	Photos  []Photo  `json:"photos"`
}

// Clone returns a deep copy of the session, so one goroutine can
// serialize a snapshot while another keeps editing the original.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:      s.ID,
		Classes: append([]string(nil), s.Classes...),
		Photos:  make([]Photo, len(s.Photos)),
	}
	for i, p := range s.Photos {
		p.Regions = append([]region.Region(nil), p.Regions...)
		out.Photos[i] = p
	}
	return out
}

// NormalizeClass trims a class name and collapses internal whitespace.
func NormalizeClass(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func classKey(name string) string {
	return strings.ToLower(NormalizeClass(name))
}

// AddClass adds a class if it is not already present (case-insensitive).
// Returns the normalized name, or "" if the name was empty.
func (s *Session) AddClass(name string) string {
	cls := NormalizeClass(name)
	if cls == "" {
		return ""
	}
	for _, c := range s.Classes {
		if classKey(c) == classKey(cls) {
			return c
		}
	}
	s.Classes = append(s.Classes, cls)
	return cls
}

// RenameClass renames a class and rewrites every region that used it.
func (s *Session) RenameClass(from, to string) error {
	a := NormalizeClass(from)
	b := NormalizeClass(to)
	if a == "" || b == "" {
		return fmt.Errorf("empty class name")
	}
	if classKey(a) == classKey(b) {
		return nil
	}

	found := false
	out := s.Classes[:0]
	for _, c := range s.Classes {
		switch classKey(c) {
		case classKey(a):
			found = true
		case classKey(b):
			// target already present, drop the source
		default:
			out = append(out, c)
			continue
		}
	}
	if !found {
		return fmt.Errorf("unknown class %q", a)
	}
	s.Classes = append(out, b)

	for pi := range s.Photos {
		for ri := range s.Photos[pi].Regions {
			if classKey(s.Photos[pi].Regions[ri].Cls) == classKey(a) {
				s.Photos[pi].Regions[ri].Cls = b
			}
		}
	}
	return nil
}

// Photo returns the photo with the given id, or nil.
func (s *Session) Photo(id string) *Photo {
	for i := range s.Photos {
		if s.Photos[i].ID == id {
			return &s.Photos[i]
		}
	}
	return nil
}

// AddPhoto appends a photo entry and returns it.
func (s *Session) AddPhoto(filename string) *Photo {
	s.Photos = append(s.Photos, Photo{
		ID:       uuid.NewString(),
		Filename: filename,
		Regions:  []region.Region{},
	})
	return &s.Photos[len(s.Photos)-1]
}

// SetPhotoRegions replaces a photo's region list wholesale. The list runs
// through the sanitize path and exact duplicates are dropped; classes the
// regions name are registered on the session.
func (s *Session) SetPhotoRegions(photoID string, regions []region.Region) error {
	p := s.Photo(photoID)
	if p == nil {
		return fmt.Errorf("unknown photo %q", photoID)
	}
	p.Regions = DedupeExact(region.SanitizeList(regions))
	for _, r := range p.Regions {
		s.AddClass(r.Cls)
	}
	return nil
}

// SetDecision records the operator's verdict for a photo.
func (s *Session) SetDecision(photoID string, d Decision) error {
	p := s.Photo(photoID)
	if p == nil {
		return fmt.Errorf("unknown photo %q", photoID)
	}
	switch d {
	case DecisionNone, DecisionOK, DecisionDefect:
		p.Decision = d
		return nil
	default:
		return fmt.Errorf("invalid decision %q", d)
	}
}

// DedupeExact drops regions that duplicate an earlier one exactly: same
// class and the same coordinates rounded to six decimals.
func DedupeExact(regions []region.Region) []region.Region {
	type key struct {
		cls        string
		x, y, w, h float64
	}
	round6 := func(v float64) float64 {
		return math.Round(v*1e6) / 1e6
	}

	seen := make(map[key]bool, len(regions))
	out := make([]region.Region, 0, len(regions))
	for _, r := range regions {
		k := key{classKey(r.Cls), round6(r.X), round6(r.Y), round6(r.W), round6(r.H)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// Store persists sessions as JSON files in a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (st *Store) path(id string) string {
	return filepath.Join(st.dir, id+".json")
}

// Create makes a new empty session and persists it.
func (st *Store) Create() (*Session, error) {
	s := &Session{
		ID:      uuid.NewString(),
		Classes: []string{},
		Photos:  []Photo{},
	}
	if err := st.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns the ids of all stored sessions, sorted.
func (st *Store) List() ([]string, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Load reads a session and restores its invariants: region lists are
// sanitized, classes deduplicated, entries without a photo id dropped.
// Malformed numeric data degrades to valid regions rather than an error.
func (st *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(st.path(id))
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	if s.ID == "" {
		s.ID = id
	}

	classes := s.Classes
	s.Classes = []string{}
	for _, c := range classes {
		s.AddClass(c)
	}

	photos := s.Photos
	s.Photos = s.Photos[:0]
	for _, p := range photos {
		if p.ID == "" {
			continue
		}
		p.Regions = DedupeExact(region.SanitizeList(p.Regions))
		for _, r := range p.Regions {
			s.AddClass(r.Cls)
		}
		s.Photos = append(s.Photos, p)
	}

	return &s, nil
}

// Save writes the session atomically (temp file plus rename).
func (st *Store) Save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := st.path(s.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, st.path(s.ID))
}
