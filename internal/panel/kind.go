// Package panel defines the closed set of panel kinds a workspace can show
// and the desired-visibility set the layout engine reconciles against.
package panel

// Kind identifies a panel type. It doubles as the panel's stable identity on
// the dock surface and as the key in a workspace's desired-visibility set.
type Kind string

const (
	Commits        Kind = "commits"
	Files          Kind = "files"
	FileTree       Kind = "file-tree"
	Diff           Kind = "diff"
	Staging        Kind = "staging"
	AIReview       Kind = "ai-review"
	Worktrees      Kind = "worktrees"
	Graph          Kind = "graph"
	MergeConflict  Kind = "merge-conflict"
	Reflog         Kind = "reflog"
	ChangesDiagram Kind = "changes-diagram"
	CodeFlow       Kind = "code-flow"
	Branches       Kind = "branches"
)

var kinds = []Kind{
	Commits,
	Files,
	FileTree,
	Diff,
	Staging,
	AIReview,
	Worktrees,
	Graph,
	MergeConflict,
	Reflog,
	ChangesDiagram,
	CodeFlow,
	Branches,
}

var titles = map[Kind]string{
	Commits:        "Commits",
	Files:          "Files",
	FileTree:       "File Tree",
	Diff:           "Diff",
	Staging:        "Staging",
	AIReview:       "AI Review",
	Worktrees:      "Worktrees",
	Graph:          "Graph",
	MergeConflict:  "Merge Conflicts",
	Reflog:         "Reflog",
	ChangesDiagram: "Changes Diagram",
	CodeFlow:       "Code Flow",
	Branches:       "Branches",
}

// Kinds returns every panel kind in canonical order. The returned slice must
// not be mutated by callers.
func Kinds() []Kind {
	return kinds
}

// Valid reports whether k is one of the known panel kinds.
func (k Kind) Valid() bool {
	_, ok := titles[k]
	return ok
}

// Title returns the human-readable panel title shown in the dock tab.
func (k Kind) Title() string {
	if title, ok := titles[k]; ok {
		return title
	}
	return string(k)
}

func (k Kind) String() string { return string(k) }
