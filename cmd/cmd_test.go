package cmd

import (
	"strings"
	"testing"

	"github.com/diffy-scm/diffy-go/internal/dock"
	"github.com/diffy-scm/diffy-go/internal/layout/persist"
)

func seedRecord(t *testing.T, dir, workspaceID string) {
	t.Helper()
	store, err := persist.NewStore(dir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	store.Save(workspaceID, &dock.Tree{
		Root: &dock.Node{
			Type:   dock.NodeGroup,
			Panels: []dock.PanelRef{{ID: "diff", Title: "Diff"}},
		},
	})
}

func TestListPrintsWorkspaceIdentities(t *testing.T) {
	dir := t.TempDir()
	seedRecord(t, dir, "/repo/a")
	var out strings.Builder
	if err := run([]string{"-state-dir", dir, "-list"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "/repo/a") {
		t.Fatalf("expected decoded workspace identity in output, got %q", out.String())
	}
}

func TestResetClearsRecords(t *testing.T) {
	dir := t.TempDir()
	seedRecord(t, dir, "/repo/a")
	var out strings.Builder
	if err := run([]string{"-state-dir", dir, "-reset"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	out.Reset()
	if err := run([]string{"-state-dir", dir, "-list"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "no stored layout records") {
		t.Fatalf("expected empty store after reset, got %q", out.String())
	}
}

func TestShowUnknownWorkspaceFails(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder
	if err := run([]string{"-state-dir", dir, "-show", t.TempDir()}, &out); err == nil {
		t.Fatal("expected an error for a workspace without a record")
	}
}
