package dock

import (
	"encoding/json"
	"fmt"
)

// Node types of a serialized tree.
const (
	NodeRow    = "row"
	NodeColumn = "column"
	NodeGroup  = "group"
)

// PanelRef is a serialized panel inside a group.
type PanelRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// Node is one node of a serialized dock tree. Row and column nodes carry
// children; group nodes carry panels.
type Node struct {
	Type     string     `json:"type"`
	Size     int        `json:"size,omitempty"`
	Locked   bool       `json:"locked,omitempty"`
	Children []*Node    `json:"children,omitempty"`
	Panels   []PanelRef `json:"panels,omitempty"`
	Active   string     `json:"active,omitempty"`
}

// Tree is the serialized form of a whole dock surface.
type Tree struct {
	Root *Node `json:"root"`
}

// NormalizeLocked clears the locked flag on every node. Locking is a
// transient UI affordance and must not survive a save/load round trip.
func (t *Tree) NormalizeLocked() {
	if t == nil {
		return
	}
	walkNodes(t.Root, func(n *Node) {
		n.Locked = false
	})
}

// PanelIDs returns every panel ID in the tree, in group order.
func (t *Tree) PanelIDs() []string {
	if t == nil {
		return nil
	}
	var ids []string
	walkNodes(t.Root, func(n *Node) {
		for _, p := range n.Panels {
			ids = append(ids, p.ID)
		}
	})
	return ids
}

// Validate checks the structural invariants a surface relies on when
// applying a tree: known node types, groups hold panels and nothing else,
// splits hold children and nothing else, and panel IDs are unique.
func (t *Tree) Validate() error {
	if t == nil || t.Root == nil {
		return fmt.Errorf("dock tree has no root")
	}
	seen := make(map[string]bool)
	return validateNode(t.Root, seen)
}

func validateNode(n *Node, seen map[string]bool) error {
	switch n.Type {
	case NodeGroup:
		if len(n.Children) > 0 {
			return fmt.Errorf("group node carries children")
		}
		if len(n.Panels) == 0 {
			return fmt.Errorf("group node has no panels")
		}
		for _, p := range n.Panels {
			if p.ID == "" {
				return fmt.Errorf("panel without an ID")
			}
			if seen[p.ID] {
				return fmt.Errorf("duplicate panel %q", p.ID)
			}
			seen[p.ID] = true
		}
	case NodeRow, NodeColumn:
		if len(n.Panels) > 0 {
			return fmt.Errorf("%s node carries panels", n.Type)
		}
		if len(n.Children) == 0 {
			return fmt.Errorf("%s node has no children", n.Type)
		}
		for _, c := range n.Children {
			if c == nil {
				return fmt.Errorf("%s node has a nil child", n.Type)
			}
			if err := validateNode(c, seen); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown node type %q", n.Type)
	}
	return nil
}

// Clone deep-copies the tree via its JSON form.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil
	}
	var out Tree
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return &out
}

func walkNodes(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		walkNodes(c, fn)
	}
}
