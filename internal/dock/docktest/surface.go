// Package docktest provides an in-memory dock.Surface for tests. It keeps a
// single row of groups, records every mutating operation, and fires listener
// notifications synchronously the way a real surface would.
package docktest

import (
	"fmt"

	"github.com/diffy-scm/diffy-go/internal/dock"
)

type fakePanel struct {
	id    string
	title string
}

func (p *fakePanel) ID() string    { return p.id }
func (p *fakePanel) Title() string { return p.title }

type group struct {
	surface *Surface
	panels  []*fakePanel
	width   int
	height  int
	locked  bool
}

func (g *group) PanelIDs() []string {
	ids := make([]string, 0, len(g.panels))
	for _, p := range g.panels {
		ids = append(ids, p.id)
	}
	return ids
}

func (g *group) SetSize(s dock.Size) {
	if s.Width != 0 {
		g.width = s.Width
	}
	if s.Height != 0 {
		g.height = s.Height
	}
	g.surface.Resizes++
	g.surface.layoutChanged()
}

func (g *group) Locked() bool     { return g.locked }
func (g *group) SetLocked(b bool) { g.locked = b }

// Surface is an in-memory dock.Surface with operation counters.
type Surface struct {
	groups    []*group
	listeners map[int]dock.Listener
	nextSub   int

	// Operation counters, reset with ResetCounts.
	Adds    int
	Removes int
	Resizes int
	Applied int // Deserialize calls that succeeded

	// FailAdd makes AddPanel fail for the given panel IDs.
	FailAdd map[string]error
}

// New returns an empty surface.
func New() *Surface {
	return &Surface{listeners: make(map[int]dock.Listener)}
}

// Mutations returns the total number of add/remove/resize operations
// recorded since the last ResetCounts.
func (s *Surface) Mutations() int { return s.Adds + s.Removes + s.Resizes }

// ResetCounts zeroes the operation counters.
func (s *Surface) ResetCounts() {
	s.Adds, s.Removes, s.Resizes, s.Applied = 0, 0, 0, 0
}

func (s *Surface) AddPanel(id, title string, pos *dock.Position) (dock.Handle, error) {
	if err := s.FailAdd[id]; err != nil {
		return nil, err
	}
	if _, ok := s.Panel(id); ok {
		return nil, fmt.Errorf("panel %q already present", id)
	}
	p := &fakePanel{id: id, title: title}
	s.place(p, pos)
	s.Adds++
	for _, l := range s.listeners {
		l.PanelAdded(id)
	}
	s.layoutChanged()
	return p, nil
}

// place inserts p according to pos. The fake models the tree as one row of
// groups: left/above insert before the anchor group, right/below after,
// within joins the anchor's group.
func (s *Surface) place(p *fakePanel, pos *dock.Position) {
	if pos == nil {
		pos = &dock.Position{Direction: dock.Right}
	}
	if pos.Relative != "" {
		if gi := s.groupIndexOf(pos.Relative); gi >= 0 {
			switch pos.Direction {
			case dock.Within:
				s.groups[gi].panels = append(s.groups[gi].panels, p)
			case dock.Left, dock.Above:
				s.insertGroup(gi, p)
			default:
				s.insertGroup(gi+1, p)
			}
			return
		}
	}
	switch pos.Direction {
	case dock.Left, dock.Above:
		s.insertGroup(0, p)
	default:
		s.insertGroup(len(s.groups), p)
	}
}

func (s *Surface) insertGroup(at int, p *fakePanel) {
	g := &group{surface: s, panels: []*fakePanel{p}}
	s.groups = append(s.groups, nil)
	copy(s.groups[at+1:], s.groups[at:])
	s.groups[at] = g
}

func (s *Surface) groupIndexOf(panelID string) int {
	for i, g := range s.groups {
		for _, p := range g.panels {
			if p.id == panelID {
				return i
			}
		}
	}
	return -1
}

func (s *Surface) RemovePanel(h dock.Handle) error {
	for gi, g := range s.groups {
		for pi, p := range g.panels {
			if p != h {
				continue
			}
			g.panels = append(g.panels[:pi], g.panels[pi+1:]...)
			if len(g.panels) == 0 {
				s.groups = append(s.groups[:gi], s.groups[gi+1:]...)
			}
			s.Removes++
			for _, l := range s.listeners {
				l.PanelRemoved(p.id)
			}
			s.layoutChanged()
			return nil
		}
	}
	return fmt.Errorf("panel %v not on surface", h)
}

func (s *Surface) Panel(id string) (dock.Handle, bool) {
	for _, g := range s.groups {
		for _, p := range g.panels {
			if p.id == id {
				return p, true
			}
		}
	}
	return nil, false
}

func (s *Surface) Groups() []dock.Group {
	out := make([]dock.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g
	}
	return out
}

// Group returns the group containing the given panel, for size assertions.
func (s *Surface) Group(panelID string) (dock.Group, bool) {
	if gi := s.groupIndexOf(panelID); gi >= 0 {
		return s.groups[gi], true
	}
	return nil, false
}

// PanelWidth returns the width of the group containing the panel, or 0.
func (s *Surface) PanelWidth(panelID string) int {
	if gi := s.groupIndexOf(panelID); gi >= 0 {
		return s.groups[gi].width
	}
	return 0
}

func (s *Surface) Serialize() (*dock.Tree, error) {
	root := &dock.Node{Type: dock.NodeRow}
	for _, g := range s.groups {
		node := &dock.Node{Type: dock.NodeGroup, Size: g.width, Locked: g.locked}
		for _, p := range g.panels {
			node.Panels = append(node.Panels, dock.PanelRef{ID: p.id, Title: p.title})
		}
		root.Children = append(root.Children, node)
	}
	if len(root.Children) == 0 {
		return nil, fmt.Errorf("empty surface")
	}
	return &dock.Tree{Root: root}, nil
}

func (s *Surface) Deserialize(tree *dock.Tree) error {
	if err := tree.Validate(); err != nil {
		return fmt.Errorf("apply dock tree: %w", err)
	}
	var groups []*group
	collectGroups(tree.Root, func(n *dock.Node) {
		g := &group{surface: s, width: n.Size, locked: n.Locked}
		for _, ref := range n.Panels {
			g.panels = append(g.panels, &fakePanel{id: ref.ID, title: ref.Title})
		}
		groups = append(groups, g)
	})
	s.groups = groups
	s.Applied++
	for _, g := range s.groups {
		for _, p := range g.panels {
			for _, l := range s.listeners {
				l.PanelAdded(p.id)
			}
		}
	}
	s.layoutChanged()
	return nil
}

func collectGroups(n *dock.Node, fn func(*dock.Node)) {
	if n == nil {
		return
	}
	if n.Type == dock.NodeGroup {
		fn(n)
		return
	}
	for _, c := range n.Children {
		collectGroups(c, fn)
	}
}

func (s *Surface) Subscribe(l dock.Listener) func() {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	return func() { delete(s.listeners, id) }
}

func (s *Surface) layoutChanged() {
	for _, l := range s.listeners {
		l.LayoutChanged()
	}
}
