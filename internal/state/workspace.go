// internal/state/workspace.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/user/quickgen/internal/types"
)

// Store is a JSON-file-backed workspace store. Each workspace lives at
// workspaces/<workspaceID>/ with a metadata.json record and chat/ and
// code/ subdirectories for per-message and per-artifact files.
type Store struct {
	root string
}

// NewStore creates a file-backed Store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) workspacesDir() string {
	return filepath.Join(s.root, "workspaces")
}

func (s *Store) workspaceDir(id types.WorkspaceID) string {
	return filepath.Join(s.workspacesDir(), string(id))
}

func (s *Store) metadataPath(id types.WorkspaceID) string {
	return filepath.Join(s.workspaceDir(id), "metadata.json")
}

// writeFileAtomic writes data to path via a temp file and rename so a
// reader never observes a partially written record.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// loadMetadata reads and parses one workspace record.
func (s *Store) loadMetadata(path string) (*types.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace metadata: %w", err)
	}
	var ws types.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("unmarshal workspace metadata: %w", err)
	}
	return &ws, nil
}

func (s *Store) saveMetadata(ws *types.Workspace) error {
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workspace metadata: %w", err)
	}
	if err := writeFileAtomic(s.metadataPath(ws.ID), data); err != nil {
		return fmt.Errorf("save workspace %s: %w", ws.ID, err)
	}
	return nil
}

// ListWorkspaces returns every known workspace sorted by last-modified
// time, newest first. A workspace whose record fails to read or parse
// is skipped rather than failing the whole listing.
func (s *Store) ListWorkspaces(_ context.Context) ([]*types.Workspace, error) {
	entries, err := os.ReadDir(s.workspacesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspaces dir: %w", err)
	}

	var workspaces []*types.Workspace
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ws, err := s.loadMetadata(filepath.Join(s.workspacesDir(), entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		workspaces = append(workspaces, ws)
	}

	sort.Slice(workspaces, func(i, j int) bool {
		return workspaces[i].ModifiedAt.After(workspaces[j].ModifiedAt)
	})
	return workspaces, nil
}

// CreateWorkspace allocates a new workspace and provisions its on-disk
// structure: the workspace directory, then chat/, then code/, and only
// then the metadata record. Directory provisioning is a prerequisite
// for every later write, never implicit.
func (s *Store) CreateWorkspace(_ context.Context, name string) (*types.Workspace, error) {
	ws := types.NewWorkspace(name)

	if err := os.MkdirAll(s.workspaceDir(ws.ID), 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	if err := os.MkdirAll(s.chatDir(ws.ID), 0o755); err != nil {
		return nil, fmt.Errorf("create chat dir: %w", err)
	}
	if err := os.MkdirAll(s.codeDir(ws.ID), 0o755); err != nil {
		return nil, fmt.Errorf("create code dir: %w", err)
	}

	if err := s.saveMetadata(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// SaveWorkspace overwrites the workspace metadata record. Idempotent.
func (s *Store) SaveWorkspace(_ context.Context, ws *types.Workspace) error {
	return s.saveMetadata(ws)
}

// DeleteWorkspace removes the workspace's entire on-disk structure,
// including all chat messages and artifacts. Best effort: on failure
// the state is left as found.
func (s *Store) DeleteWorkspace(_ context.Context, id types.WorkspaceID) error {
	if err := os.RemoveAll(s.workspaceDir(id)); err != nil {
		return fmt.Errorf("delete workspace %s: %w", id, err)
	}
	return nil
}

// RenameWorkspace updates the workspace name and bumps its
// last-modified time.
func (s *Store) RenameWorkspace(_ context.Context, id types.WorkspaceID, newName string) error {
	ws, err := s.loadMetadata(s.metadataPath(id))
	if err != nil {
		return err
	}
	ws.Name = newName
	ws.ModifiedAt = time.Now()
	return s.saveMetadata(ws)
}
