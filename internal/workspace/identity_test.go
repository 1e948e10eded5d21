package workspace

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
)

func TestIdentityResolvesWorktreeRootFromSubdir(t *testing.T) {
	root := t.TempDir()
	if _, err := git.PlainInit(root, false); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	sub := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got := Identity(sub)
	want := Identity(root)
	if got != want {
		t.Fatalf("subdir should resolve to repo root: got %q, want %q", got, want)
	}
}

func TestIdentityFallsBackToAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	got := Identity(dir)
	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	if got != abs {
		t.Fatalf("non-repo identity should be the absolute path: got %q, want %q", got, abs)
	}
}
