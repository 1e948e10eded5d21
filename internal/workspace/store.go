// Package workspace tracks the open repository tabs, their desired panel
// visibility, and which tab is active.
package workspace

import (
	"sync"

	"github.com/diffy-scm/diffy-go/internal/panel"
)

// Workspace is one open repository tab. Its ID is the stable identity used
// to key persisted layouts (see Identity).
type Workspace struct {
	ID      string
	desired panel.DesiredSet
}

// Store owns every open workspace and the active-workspace pointer.
//
// The two callbacks are how the layout engine observes the store. They fire
// synchronously under no lock, after the mutation is committed.
// SyncPanels never fires them; it is the engine's write-back path and
// re-notifying would echo the engine's own mutations back at it.
type Store struct {
	// PanelToggled fires after a user toggle changed one desired flag.
	PanelToggled func(id string, desired panel.DesiredSet)
	// ActiveChanged fires after the active workspace moved from prev to next.
	ActiveChanged func(prev, next string)

	mu         sync.Mutex
	workspaces map[string]*Workspace
	active     string
}

func NewStore() *Store {
	return &Store{workspaces: make(map[string]*Workspace)}
}

// Open creates the workspace for id if needed and returns its ID. A fresh
// workspace starts out wanting the default panel set.
func (s *Store) Open(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		s.workspaces[id] = &Workspace{
			ID:      id,
			desired: panel.SetOf(panel.Commits, panel.Files, panel.Diff),
		}
	}
	return id
}

// Close drops the workspace. Closing the active workspace leaves no active
// workspace until the shell activates another tab.
func (s *Store) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
	if s.active == id {
		s.active = ""
	}
}

// Active returns the active workspace ID, or "" when none is active.
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive makes id the active workspace, opening it if needed.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	prev := s.active
	if prev == id {
		s.mu.Unlock()
		return
	}
	if _, ok := s.workspaces[id]; !ok {
		s.workspaces[id] = &Workspace{
			ID:      id,
			desired: panel.SetOf(panel.Commits, panel.Files, panel.Diff),
		}
	}
	s.active = id
	cb := s.ActiveChanged
	s.mu.Unlock()
	if cb != nil {
		cb(prev, id)
	}
}

// Desired returns a copy of the workspace's desired panel set.
func (s *Store) Desired(id string) panel.DesiredSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workspaces[id]; ok {
		return w.desired.Clone()
	}
	return panel.DesiredSet{}
}

// Toggle flips one desired flag on the workspace and notifies the engine.
// A no-op toggle (flag already in the requested state) notifies nobody.
func (s *Store) Toggle(id string, kind panel.Kind, visible bool) {
	s.mu.Lock()
	w, ok := s.workspaces[id]
	if !ok || w.desired[kind] == visible {
		s.mu.Unlock()
		return
	}
	w.desired[kind] = visible
	desired := w.desired.Clone()
	cb := s.PanelToggled
	s.mu.Unlock()
	if cb != nil {
		cb(id, desired)
	}
}

// SyncPanels applies a partial desired-set update atomically, without
// notification. The engine calls it after reconciliation and preset
// application so toggle-button state matches what actually exists on the
// dock surface, including panels whose add silently failed.
func (s *Store) SyncPanels(id string, partial map[panel.Kind]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return
	}
	for k, v := range partial {
		w.desired[k] = v
	}
}
