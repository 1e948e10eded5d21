package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/diffy-scm/diffy-go/internal/dock"
	"github.com/diffy-scm/diffy-go/internal/dock/docktest"
	"github.com/diffy-scm/diffy-go/internal/layout/persist"
	"github.com/diffy-scm/diffy-go/internal/panel"
	"github.com/diffy-scm/diffy-go/internal/workspace"
)

const wsA = "/repo/a"

// newTestEngine attaches a fresh engine to an in-memory surface with wsA
// active and no persistence.
func newTestEngine(t *testing.T) (*Engine, *docktest.Surface, *workspace.Store) {
	t.Helper()
	immediateTxnExits(t)
	store := workspace.NewStore()
	e := New(store, nil, Config{})
	store.SetActive(wsA)
	surface := docktest.New()
	e.Attach(surface)
	t.Cleanup(e.Close)
	return e, surface, store
}

func panelIDs(t *testing.T, s *docktest.Surface) []string {
	t.Helper()
	return dock.PanelIDs(s)
}

func wantPanels(t *testing.T, s *docktest.Surface, want ...string) {
	t.Helper()
	got := dock.PanelIDs(s)
	if len(got) != len(want) {
		t.Fatalf("expected panels %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected panels %v, got %v", want, got)
		}
	}
}

func TestAttachBuildsDefaultLayout(t *testing.T) {
	_, surface, store := newTestEngine(t)
	wantPanels(t, surface, "commits", "files", "diff")
	// Column widths in ratio 25:25:50.
	commits := surface.PanelWidth("commits")
	files := surface.PanelWidth("files")
	diff := surface.PanelWidth("diff")
	if commits == 0 || commits != files || diff != 2*commits {
		t.Fatalf("expected 25:25:50 column ratio, got %d:%d:%d", commits, files, diff)
	}
	desired := store.Desired(wsA)
	if !desired.Equal(panel.SetOf(panel.Commits, panel.Files, panel.Diff)) {
		t.Fatalf("store should be synced to the default layout, got %v", desired)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	e, surface, _ := newTestEngine(t)
	desired := panel.SetOf(panel.Commits, panel.Files, panel.Diff, panel.Worktrees)
	e.Reconcile(desired)
	first := panelIDs(t, surface)
	surface.ResetCounts()
	e.Reconcile(desired.Clone())
	if surface.Mutations() != 0 {
		t.Fatalf("second reconcile must perform zero operations, got %d", surface.Mutations())
	}
	wantPanels(t, surface, first...)
}

func TestReconcileExactDiff(t *testing.T) {
	e, surface, _ := newTestEngine(t)
	base := panel.SetOf(panel.Commits, panel.Files, panel.Diff)

	surface.ResetCounts()
	withWorktrees := base.Clone()
	withWorktrees[panel.Worktrees] = true
	e.Reconcile(withWorktrees)
	if surface.Adds != 1 || surface.Removes != 0 || surface.Resizes != 0 {
		t.Fatalf("expected exactly one add, got adds=%d removes=%d resizes=%d",
			surface.Adds, surface.Removes, surface.Resizes)
	}

	surface.ResetCounts()
	e.Reconcile(base)
	if surface.Removes != 1 || surface.Adds != 0 {
		t.Fatalf("expected exactly one remove, got adds=%d removes=%d", surface.Adds, surface.Removes)
	}
	wantPanels(t, surface, "commits", "files", "diff")
}

func TestWorktreesSlotsNextToItsAnchor(t *testing.T) {
	e, surface, _ := newTestEngine(t)
	// No branches panel open: worktrees anchors to commits.
	desired := panel.SetOf(panel.Commits, panel.Files, panel.Diff, panel.Worktrees)
	e.Reconcile(desired)
	wantPanels(t, surface, "commits", "worktrees", "files", "diff")

	// With branches present, worktrees prefers it.
	e.Reconcile(panel.SetOf(panel.Commits, panel.Files, panel.Diff))
	withBranches := panel.SetOf(panel.Commits, panel.Files, panel.Diff, panel.Branches)
	e.Reconcile(withBranches)
	withBoth := withBranches.Clone()
	withBoth[panel.Worktrees] = true
	e.Reconcile(withBoth)
	wantPanels(t, surface, "branches", "worktrees", "commits", "files", "diff")
}

func TestFailedAddIsSyncedBackToStore(t *testing.T) {
	_, surface, store := newTestEngine(t)
	surface.FailAdd = map[string]error{"worktrees": errors.New("no space")}
	store.Toggle(wsA, panel.Worktrees, true)
	if _, ok := surface.Panel("worktrees"); ok {
		t.Fatal("panel should not exist after failed add")
	}
	if store.Desired(wsA)[panel.Worktrees] {
		t.Fatal("store flag must be synced back to false after a failed add")
	}
	// The snapshot must agree, so a retry actually retries.
	surface.FailAdd = nil
	store.Toggle(wsA, panel.Worktrees, true)
	if _, ok := surface.Panel("worktrees"); !ok {
		t.Fatal("retry after failed add should add the panel")
	}
}

func TestUserRemovalReentersStoreSync(t *testing.T) {
	e, surface, store := newTestEngine(t)
	h, ok := surface.Panel("files")
	if !ok {
		t.Fatal("files panel missing from default layout")
	}
	// Guard is closed; this models the user closing the panel.
	if err := surface.RemovePanel(h); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if store.Desired(wsA)[panel.Files] {
		t.Fatal("user removal must clear the store's desired flag")
	}
	// Snapshot followed: reconciling the same set is a no-op.
	surface.ResetCounts()
	e.Reconcile(store.Desired(wsA))
	if surface.Mutations() != 0 {
		t.Fatalf("expected no operations after user removal sync, got %d", surface.Mutations())
	}
}

func TestOwnNotificationsAreSuppressedDuringTransaction(t *testing.T) {
	store := workspace.NewStore()
	e := New(store, nil, Config{})
	store.SetActive(wsA)
	surface := docktest.New()

	exits := captureTxnExits(t)
	e.Attach(surface)
	t.Cleanup(e.Close)

	// The attach transaction is still open: a late async notification must
	// not be taken for a user change.
	events := surfaceEvents{e}
	events.PanelRemoved("files")
	if !store.Desired(wsA)[panel.Files] {
		t.Fatal("notification inside the suppression window must be ignored")
	}

	for _, exit := range *exits {
		exit()
	}
	// Window closed: the same notification is now user-driven.
	events.PanelRemoved("files")
	if store.Desired(wsA)[panel.Files] {
		t.Fatal("notification after the suppression window must sync the store")
	}
}

func TestWorkspaceSwitchPreservesDockTree(t *testing.T) {
	e, surface, store := newTestEngine(t)
	store.Toggle(wsA, panel.Worktrees, true)
	before := panelIDs(t, surface)

	surface.ResetCounts()
	store.SetActive("/repo/b")
	if surface.Mutations() != 0 {
		t.Fatalf("workspace switch must not touch the dock tree, got %d operations", surface.Mutations())
	}
	wantPanels(t, surface, before...)

	// The snapshot was re-baselined to the actual panel set, not to B's
	// desired set, and the next reconciliation pass is skipped once.
	e.Reconcile(store.Desired("/repo/b"))
	wantPanels(t, surface, before...)

	// After the one-shot suppression, reconciliation works normally.
	e.Reconcile(panel.SetOf(panel.Commits, panel.Files, panel.Diff))
	wantPanels(t, surface, "commits", "files", "diff")
}

func TestColdStartAppliesQueuedWorkspaceLayout(t *testing.T) {
	immediateTxnExits(t)
	records, err := persist.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	records.Save("/repo/b", &dock.Tree{
		Root: &dock.Node{
			Type: dock.NodeRow,
			Children: []*dock.Node{
				{Type: dock.NodeGroup, Size: 448, Panels: []dock.PanelRef{{ID: "staging", Title: "Staging"}}},
				{Type: dock.NodeGroup, Size: 832, Panels: []dock.PanelRef{{ID: "diff", Title: "Diff"}}},
			},
		},
	})

	store := workspace.NewStore()
	e := New(store, records, Config{})
	// Switch requested before the surface exists: queued.
	store.SetActive("/repo/b")
	surface := docktest.New()
	e.Attach(surface)
	t.Cleanup(e.Close)

	wantPanels(t, surface, "staging", "diff")
	desired := store.Desired("/repo/b")
	if !desired.Equal(panel.SetOf(panel.Staging, panel.Diff)) {
		t.Fatalf("store should be baselined to the loaded layout, got %v", desired)
	}
}

func TestColdStartFallsBackToDefaultOnCorruptRecord(t *testing.T) {
	immediateTxnExits(t)
	dir := t.TempDir()
	records, err := persist.NewStore(dir)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	path := filepath.Join(dir, persist.EncodeKey("/repo/b"))
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := workspace.NewStore()
	e := New(store, records, Config{})
	store.SetActive("/repo/b")
	surface := docktest.New()
	e.Attach(surface)
	t.Cleanup(e.Close)

	wantPanels(t, surface, "commits", "files", "diff")
}

func TestSwitchSavesPreviousWorkspaceLayout(t *testing.T) {
	immediateTxnExits(t)
	records, err := persist.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	store := workspace.NewStore()
	e := New(store, records, Config{})
	store.SetActive(wsA)
	surface := docktest.New()
	e.Attach(surface)

	store.Toggle(wsA, panel.Worktrees, true)
	store.SetActive("/repo/b")
	// Saves are deferred; Close flushes them.
	e.Close()

	tree := records.Load(wsA)
	if tree == nil {
		t.Fatal("expected a saved record for the previous workspace")
	}
	ids := tree.PanelIDs()
	found := false
	for _, id := range ids {
		if id == "worktrees" {
			found = true
		}
	}
	if !found {
		t.Fatalf("saved tree should include the toggled panel, got %v", ids)
	}
}
