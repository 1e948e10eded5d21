package layout

import (
	"github.com/diffy-scm/diffy-go/internal/dock"
	"github.com/diffy-scm/diffy-go/internal/panel"
)

// anchorRule places a panel relative to another panel when that anchor is
// currently on the surface.
type anchorRule struct {
	anchor panel.Kind
	dir    dock.Direction
}

// placement is the ordered fallback chain for one panel kind: the first rule
// whose anchor is present wins; with no anchor present the panel is placed
// absolutely against the whole tree.
type placement struct {
	rules    []anchorRule
	fallback dock.Direction
}

var placements = map[panel.Kind]placement{
	panel.Commits: {
		fallback: dock.Left,
	},
	panel.Files: {
		rules: []anchorRule{
			{panel.Commits, dock.Right},
			{panel.Diff, dock.Left},
		},
		fallback: dock.Right,
	},
	panel.FileTree: {
		rules: []anchorRule{
			{panel.Files, dock.Within},
		},
		fallback: dock.Right,
	},
	panel.Diff: {
		rules: []anchorRule{
			{panel.Files, dock.Right},
			{panel.Commits, dock.Right},
		},
		fallback: dock.Right,
	},
	panel.Staging: {
		rules: []anchorRule{
			{panel.Diff, dock.Left},
			{panel.Files, dock.Below},
		},
		fallback: dock.Left,
	},
	panel.AIReview: {
		rules: []anchorRule{
			{panel.Diff, dock.Within},
		},
		fallback: dock.Right,
	},
	panel.Worktrees: {
		rules: []anchorRule{
			{panel.Branches, dock.Below},
			{panel.Commits, dock.Below},
		},
		fallback: dock.Left,
	},
	panel.Graph: {
		rules: []anchorRule{
			{panel.Commits, dock.Within},
		},
		fallback: dock.Right,
	},
	panel.MergeConflict: {
		rules: []anchorRule{
			{panel.Diff, dock.Within},
		},
		fallback: dock.Right,
	},
	panel.Reflog: {
		rules: []anchorRule{
			{panel.Commits, dock.Within},
		},
		fallback: dock.Right,
	},
	panel.ChangesDiagram: {
		rules: []anchorRule{
			{panel.Graph, dock.Within},
			{panel.Commits, dock.Within},
		},
		fallback: dock.Right,
	},
	panel.CodeFlow: {
		rules: []anchorRule{
			{panel.Diff, dock.Below},
		},
		fallback: dock.Below,
	},
	panel.Branches: {
		rules: []anchorRule{
			{panel.Commits, dock.Left},
		},
		fallback: dock.Left,
	},
}

// placementFor resolves where kind should appear given what is currently on
// the surface.
func placementFor(surface dock.Surface, kind panel.Kind) *dock.Position {
	p, ok := placements[kind]
	if !ok {
		return &dock.Position{Direction: dock.Right}
	}
	for _, rule := range p.rules {
		if _, present := surface.Panel(string(rule.anchor)); present {
			return &dock.Position{Relative: string(rule.anchor), Direction: rule.dir}
		}
	}
	return &dock.Position{Direction: p.fallback}
}
