package layout

import (
	"fmt"
	"log/slog"

	"github.com/diffy-scm/diffy-go/internal/dock"
	"github.com/diffy-scm/diffy-go/internal/panel"
)

// nominalWidth is the layout-unit row width group sizes are expressed
// against. Surfaces scale units to pixels; the engine only cares about
// ratios.
const nominalWidth = 1280

// Preset is a named, fully-specified target arrangement: which panels exist,
// in left-to-right order, and how wide each panel's column is.
type Preset struct {
	ID     string
	Panels []panel.Kind
	Widths map[panel.Kind]int
}

func (p Preset) set() panel.DesiredSet {
	return panel.SetOf(p.Panels...)
}

const (
	// PresetStandard is the three-column browsing layout.
	PresetStandard = "standard"
	// PresetChanges is the two-column staging layout.
	PresetChanges = "changes"
)

var presets = map[string]Preset{
	PresetStandard: {
		ID:     PresetStandard,
		Panels: []panel.Kind{panel.Commits, panel.Files, panel.Diff},
		Widths: map[panel.Kind]int{
			panel.Commits: nominalWidth / 4,
			panel.Files:   nominalWidth / 4,
			panel.Diff:    nominalWidth / 2,
		},
	},
	PresetChanges: {
		ID:     PresetChanges,
		Panels: []panel.Kind{panel.Staging, panel.Diff},
		Widths: map[panel.Kind]int{
			panel.Staging: nominalWidth * 35 / 100,
			panel.Diff:    nominalWidth * 65 / 100,
		},
	},
}

// ApplyPreset transitions the surface to the named preset. Between the two
// frequently toggled presets the transition is incremental: panels common to
// both (the diff panel) keep their live instances, only the differing panels
// are added or removed. Any unrecognized starting shape falls back to a full
// teardown-and-rebuild.
func (e *Engine) ApplyPreset(id string) error {
	p, ok := presets[id]
	if !ok {
		return fmt.Errorf("unknown preset %q", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return fmt.Errorf("apply preset %q: no dock surface attached", id)
	}
	e.txn.enter()
	defer e.txn.exitSoon()

	if e.knownPresetShapeLocked() {
		e.transitionLocked(p)
	} else {
		slog.Debug("preset transition falling back to rebuild", slog.String("preset", id))
		e.rebuildLocked(p)
	}
	e.resizeLocked(p)

	e.last = e.actualDesiredLocked()
	e.syncAllLocked()
	e.scheduleSaveLocked(e.active)
	return nil
}

// knownPresetShapeLocked reports whether the current panel set matches one
// of the named presets, which is the precondition for the incremental path.
func (e *Engine) knownPresetShapeLocked() bool {
	current := e.actualDesiredLocked()
	for _, p := range presets {
		if current.Equal(p.set()) {
			return true
		}
	}
	return false
}

// transitionLocked patches only the difference between the current panel set
// and the target: removals first so the shared anchor panels keep their
// positions, then additions via the regular placement chains.
func (e *Engine) transitionLocked(p Preset) {
	target := p.set()
	for _, k := range panel.Kinds() {
		if target[k] {
			continue
		}
		if h, ok := e.handleForLocked(k); ok {
			e.removePanelLocked(k, h)
		}
	}
	for _, k := range p.Panels {
		if _, ok := e.surface.Panel(string(k)); ok {
			continue
		}
		e.addPanelLocked(k)
	}
}

// rebuildLocked tears every panel down and builds the target from scratch in
// a single pass. Correctness over cleverness: this path handles any starting
// shape.
func (e *Engine) rebuildLocked(p Preset) {
	for _, id := range dock.PanelIDs(e.surface) {
		k := panel.Kind(id)
		if h, ok := e.handleForLocked(k); ok {
			e.removePanelLocked(k, h)
		}
	}
	for _, k := range p.Panels {
		e.addPanelLocked(k)
	}
}

func (e *Engine) resizeLocked(p Preset) {
	for _, k := range p.Panels {
		width, ok := p.Widths[k]
		if !ok {
			continue
		}
		if g, ok := groupOf(e.surface, string(k)); ok {
			g.SetSize(dock.Size{Width: width})
		}
	}
}

// applyDefaultLocked builds the hard-coded default layout, used whenever a
// persisted record is missing or fails to apply.
func (e *Engine) applyDefaultLocked() {
	p := presets[PresetStandard]
	e.rebuildLocked(p)
	e.resizeLocked(p)
}

func groupOf(s dock.Surface, panelID string) (dock.Group, bool) {
	for _, g := range s.Groups() {
		for _, id := range g.PanelIDs() {
			if id == panelID {
				return g, true
			}
		}
	}
	return nil, false
}
