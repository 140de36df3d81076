// Package app provides application state, configuration, and events.
package app

import (
	"fmt"
	"sync"

	"defect-review/internal/photo"
	"defect-review/internal/region"
	"defect-review/internal/session"
)

// State holds the application state: the active session, the current
// photo, and the selection. It owns the canonical region list; the canvas
// edits a working copy and commits full replacement lists back here.
type State struct {
	mu sync.RWMutex

	store    *session.Store
	sess     *session.Session
	modified bool

	currentPhotoID string
	currentPhoto   *photo.Photo

	selectedRegionID string

	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventSessionChanged EventType = iota
	EventSessionSaved
	EventPhotoChanged
	EventPhotosChanged
	EventRegionsChanged
	EventSelectionChanged
	EventRegionReveal
	EventClassesChanged
	EventDecisionChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates application state backed by the given session store.
func NewState(store *session.Store) *State {
	return &State{
		store:     store,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// Modified reports whether the session has unsaved changes.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Session returns the active session, or nil.
func (s *State) Session() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// NewSession creates and activates a fresh session.
func (s *State) NewSession() error {
	sess, err := s.store.Create()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sess = sess
	s.modified = false
	s.currentPhotoID = ""
	s.currentPhoto = nil
	s.selectedRegionID = ""
	s.mu.Unlock()

	s.Emit(EventSessionChanged, sess.ID)
	return nil
}

// LoadSession activates a stored session.
func (s *State) LoadSession(id string) error {
	sess, err := s.store.Load(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sess = sess
	s.modified = false
	s.currentPhotoID = ""
	s.currentPhoto = nil
	s.selectedRegionID = ""
	s.mu.Unlock()

	s.Emit(EventSessionChanged, sess.ID)

	if len(sess.Photos) > 0 {
		return s.SelectPhoto(sess.Photos[0].ID)
	}
	return nil
}

// SaveSession persists the active session. The session is snapshotted
// under the state lock and the copy is what gets marshaled, so the
// autosave goroutine never reads a session mid-edit.
func (s *State) SaveSession() error {
	s.mu.Lock()
	if s.sess == nil {
		s.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	snapshot := s.sess.Clone()
	s.mu.Unlock()

	if err := s.store.Save(snapshot); err != nil {
		return err
	}
	s.SetModified(false)
	s.Emit(EventSessionSaved, snapshot.ID)
	return nil
}

// SessionIDs lists the stored sessions.
func (s *State) SessionIDs() ([]string, error) {
	return s.store.List()
}

// ImportPhotos registers photo files with the active session. Paths with
// unsupported extensions are skipped. Returns the number imported.
func (s *State) ImportPhotos(paths []string) (int, error) {
	s.mu.Lock()
	sess := s.sess
	if sess == nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("no active session")
	}

	imported := 0
	for _, p := range paths {
		if !photo.IsSupportedFormat(p) {
			continue
		}
		sess.AddPhoto(p)
		imported++
	}
	firstID := ""
	if len(sess.Photos) > 0 {
		firstID = sess.Photos[0].ID
	}
	s.mu.Unlock()

	if imported == 0 {
		return 0, nil
	}

	s.SetModified(true)
	s.Emit(EventPhotosChanged, nil)

	if s.CurrentPhotoID() == "" {
		return imported, s.SelectPhoto(firstID)
	}
	return imported, nil
}

// SelectPhoto makes a photo current and loads its image. Selection and
// viewport state belong to the new photo afterwards.
func (s *State) SelectPhoto(photoID string) error {
	s.mu.RLock()
	sess := s.sess
	s.mu.RUnlock()
	if sess == nil {
		return fmt.Errorf("no active session")
	}
	entry := sess.Photo(photoID)
	if entry == nil {
		return fmt.Errorf("unknown photo %q", photoID)
	}

	img, err := photo.Load(entry.Filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.currentPhotoID = photoID
	s.currentPhoto = img
	s.selectedRegionID = ""
	s.mu.Unlock()

	s.Emit(EventPhotoChanged, photoID)
	s.Emit(EventSelectionChanged, "")
	return nil
}

// CurrentPhotoID returns the id of the current photo, or "".
func (s *State) CurrentPhotoID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPhotoID
}

// CurrentPhoto returns the loaded image of the current photo, or nil.
func (s *State) CurrentPhoto() *photo.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPhoto
}

// CurrentRegions returns the canonical region list of the current photo.
func (s *State) CurrentRegions() []region.Region {
	s.mu.RLock()
	sess := s.sess
	id := s.currentPhotoID
	s.mu.RUnlock()
	if sess == nil || id == "" {
		return nil
	}
	entry := sess.Photo(id)
	if entry == nil {
		return nil
	}
	return entry.Regions
}

// CommitRegions replaces the current photo's region list wholesale.
// Classes referenced by the regions are registered on the session.
func (s *State) CommitRegions(regions []region.Region) error {
	s.mu.Lock()
	sess := s.sess
	id := s.currentPhotoID
	if sess == nil || id == "" {
		s.mu.Unlock()
		return fmt.Errorf("no current photo")
	}

	before := len(sess.Classes)
	err := sess.SetPhotoRegions(id, regions)
	classesChanged := len(sess.Classes) != before
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.SetModified(true)
	s.Emit(EventRegionsChanged, id)
	if classesChanged {
		s.Emit(EventClassesChanged, nil)
	}
	return nil
}

// SelectedRegionID returns the selected region id, or "".
func (s *State) SelectedRegionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedRegionID
}

// SelectRegion updates the selection and notifies listeners.
func (s *State) SelectRegion(id string) {
	s.mu.Lock()
	if s.selectedRegionID == id {
		s.mu.Unlock()
		return
	}
	s.selectedRegionID = id
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, id)
}

// RevealRegion asks list views to scroll a region into view.
func (s *State) RevealRegion(id string) {
	s.Emit(EventRegionReveal, id)
}

// SetDecision records the operator's verdict for the current photo.
func (s *State) SetDecision(d session.Decision) error {
	s.mu.Lock()
	sess := s.sess
	id := s.currentPhotoID
	if sess == nil || id == "" {
		s.mu.Unlock()
		return fmt.Errorf("no current photo")
	}
	err := sess.SetDecision(id, d)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.SetModified(true)
	s.Emit(EventDecisionChanged, id)
	return nil
}

// AddClass registers a class on the session.
func (s *State) AddClass(name string) string {
	s.mu.Lock()
	sess := s.sess
	if sess == nil {
		s.mu.Unlock()
		return ""
	}
	cls := sess.AddClass(name)
	s.mu.Unlock()
	if cls != "" {
		s.SetModified(true)
		s.Emit(EventClassesChanged, nil)
	}
	return cls
}

// RenameClass renames a class across the session.
func (s *State) RenameClass(from, to string) error {
	s.mu.Lock()
	sess := s.sess
	if sess == nil {
		s.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	err := sess.RenameClass(from, to)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventClassesChanged, nil)
	s.Emit(EventRegionsChanged, s.CurrentPhotoID())
	return nil
}
