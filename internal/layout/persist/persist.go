// Package persist stores one serialized dock tree per workspace. Records
// live in a state directory, keyed by a reversible encoding of the workspace
// identity. Corrupt or missing records never surface as errors: callers fall
// back to the default layout instead.
package persist

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/diffy-scm/diffy-go/internal/dock"
)

const (
	recordPrefix = "layout-"
	recordSuffix = ".json"
)

// Store reads and writes per-workspace layout records under one directory.
type Store struct {
	dir string
}

// DefaultDir is the XDG state directory for layout records.
func DefaultDir() string {
	return filepath.Join(xdg.StateHome, "diffy-go", "layouts")
}

// NewStore creates the record directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the record directory.
func (s *Store) Dir() string { return s.dir }

// EncodeKey turns a workspace identity into a storage-safe record name.
// The encoding is reversible; see DecodeKey.
func EncodeKey(workspaceID string) string {
	return recordPrefix + base64.RawURLEncoding.EncodeToString([]byte(workspaceID)) + recordSuffix
}

// DecodeKey recovers the workspace identity from a record name.
func DecodeKey(name string) (string, bool) {
	if !strings.HasPrefix(name, recordPrefix) || !strings.HasSuffix(name, recordSuffix) {
		return "", false
	}
	enc := strings.TrimSuffix(strings.TrimPrefix(name, recordPrefix), recordSuffix)
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Save writes the tree under the workspace's record, normalizing every
// locked flag to false first. Save never returns an error: a failed write is
// logged and the in-memory tree stays authoritative.
func (s *Store) Save(workspaceID string, tree *dock.Tree) {
	if workspaceID == "" || tree == nil {
		return
	}
	snapshot := tree.Clone()
	if snapshot == nil {
		slog.Error("layout save: tree not serializable", slog.String("workspace", workspaceID))
		return
	}
	snapshot.NormalizeLocked()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		slog.Error("layout save: marshal", slog.String("workspace", workspaceID), slog.Any("error", err))
		return
	}
	path := filepath.Join(s.dir, EncodeKey(workspaceID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("layout save: write", slog.String("workspace", workspaceID), slog.Any("error", err))
	}
}

// Load returns the stored tree for the workspace, or nil when the record is
// missing, unreadable, or structurally invalid.
func (s *Store) Load(workspaceID string) *dock.Tree {
	path := filepath.Join(s.dir, EncodeKey(workspaceID))
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("layout load: read", slog.String("workspace", workspaceID), slog.Any("error", err))
		}
		return nil
	}
	var tree dock.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		slog.Debug("layout load: corrupt record", slog.String("workspace", workspaceID), slog.Any("error", err))
		return nil
	}
	if err := tree.Validate(); err != nil {
		slog.Debug("layout load: invalid shape", slog.String("workspace", workspaceID), slog.Any("error", err))
		return nil
	}
	return &tree
}

// List returns the workspace identities that have a stored record.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := DecodeKey(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Reset removes every layout record. This is the escape hatch for corrupted
// state: the next load falls back to the default layout.
func (s *Store) Reset() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read layout dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := DecodeKey(e.Name()); !ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (s *Store) empty() bool {
	ids, err := s.List()
	return err == nil && len(ids) == 0
}
