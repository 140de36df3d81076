package app

import (
	"log"
	"time"
)

// Autosaver periodically persists the active session while it has
// unsaved changes, so a crash loses at most one interval of work.
type Autosaver struct {
	state    *State
	interval time.Duration
	stopCh   chan struct{}
}

// NewAutosaver creates an autosaver for the given state.
func NewAutosaver(state *State, interval time.Duration) *Autosaver {
	return &Autosaver{
		state:    state,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background save loop.
func (a *Autosaver) Start() {
	ticker := time.NewTicker(a.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if a.state.Session() == nil || !a.state.Modified() {
					continue
				}
				if err := a.state.SaveSession(); err != nil {
					log.Printf("Autosave failed: %v", err)
				}
			case <-a.stopCh:
				return
			}
		}
	}()
}

// Stop ends the save loop. Safe to call once.
func (a *Autosaver) Stop() {
	close(a.stopCh)
}
