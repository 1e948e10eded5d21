// Package dock declares the contract of the docking surface the layout
// engine drives. The surface itself (drag/drop, rendering, hit testing) is an
// external collaborator; the engine only needs the operations and
// notifications below plus the serialized tree form in tree.go.
package dock

// Direction places a panel relative to an anchor panel, or relative to the
// whole tree when the anchor is empty.
type Direction string

const (
	Left   Direction = "left"
	Right  Direction = "right"
	Above  Direction = "above"
	Below  Direction = "below"
	Within Direction = "within"
)

// Position describes where a new panel should appear. A zero Position lets
// the surface pick its own default placement.
type Position struct {
	// Relative is the ID of the anchor panel. Empty means the position is
	// absolute against the whole tree.
	Relative  string
	Direction Direction
}

// Handle is a live panel instance on the surface. Handle identity is stable
// for the lifetime of the instance: a panel that survives a layout transition
// keeps its handle.
type Handle interface {
	ID() string
	Title() string
}

// Size sets one or both axes of a group. A zero field leaves that axis alone.
type Size struct {
	Width  int
	Height int
}

// Group is a resizable container of panels. Locked is a transient UI
// affordance; it is never persisted (see Tree.NormalizeLocked).
type Group interface {
	PanelIDs() []string
	SetSize(Size)
	Locked() bool
	SetLocked(bool)
}

// Listener receives surface change notifications. The surface emits these
// for user-driven and programmatic mutations alike; telling the two apart is
// the layout engine's job, not the listener payload's.
type Listener interface {
	LayoutChanged()
	PanelAdded(id string)
	PanelRemoved(id string)
}

// Surface is the imperative docking primitive.
type Surface interface {
	AddPanel(id, title string, pos *Position) (Handle, error)
	RemovePanel(h Handle) error
	// Panel looks up a live panel by ID.
	Panel(id string) (Handle, bool)
	Groups() []Group
	// Serialize snapshots the full tree. Deserialize replaces the current
	// tree wholesale and returns an error when the tree is structurally
	// invalid, leaving the surface unchanged.
	Serialize() (*Tree, error)
	Deserialize(*Tree) error
	// Subscribe registers a listener and returns its cancel func.
	Subscribe(l Listener) (cancel func())
}

// PanelIDs returns the IDs of every live panel on the surface, in group
// order.
func PanelIDs(s Surface) []string {
	var ids []string
	for _, g := range s.Groups() {
		ids = append(ids, g.PanelIDs()...)
	}
	return ids
}
