package workspace

import (
	"log/slog"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// Identity resolves the stable workspace identity for a path. Opening any
// directory inside a repository maps to the repository's worktree root, so
// the same repo always reuses one persisted layout record no matter which
// subdirectory the tab was opened from. Non-repositories fall back to the
// cleaned absolute path.
func Identity(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Debug("workspace identity: not a repository", slog.String("path", abs), slog.Any("error", err))
		return abs
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repository: the path itself is the identity.
		return abs
	}
	return wt.Filesystem.Root()
}
