// internal/state/artifact.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/quickgen/internal/types"
)

func (s *Store) codeDir(id types.WorkspaceID) string {
	return filepath.Join(s.workspaceDir(id), "code")
}

func (s *Store) artifactPath(workspaceID types.WorkspaceID, artifactID types.ArtifactID) string {
	return filepath.Join(s.codeDir(workspaceID), string(artifactID)+".json")
}

// latestPath is the pointer record naming the current artifact. It is
// plain text holding a single artifact ID.
func (s *Store) latestPath(id types.WorkspaceID) string {
	return filepath.Join(s.codeDir(id), "latest.txt")
}

func (s *Store) loadArtifact(path string) (*types.GeneratedArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var artifact types.GeneratedArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("unmarshal artifact: %w", err)
	}
	return &artifact, nil
}

// LatestArtifact reads the pointer record and loads the artifact it
// names. A missing pointer means no artifact and returns nil, nil. A
// pointer whose target is missing or unreadable also reads as nil, nil:
// the store degrades to "no artifact" rather than surfacing the
// disagreement.
func (s *Store) LatestArtifact(_ context.Context, id types.WorkspaceID) (*types.GeneratedArtifact, error) {
	data, err := os.ReadFile(s.latestPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read latest pointer: %w", err)
	}

	artifactID := types.ArtifactID(strings.TrimSpace(string(data)))
	artifact, err := s.loadArtifact(s.artifactPath(id, artifactID))
	if err != nil {
		return nil, nil
	}
	return artifact, nil
}

// SaveArtifact persists the artifact record and then rewrites the
// latest pointer to name it. The artifact file is always written first;
// the pointer moves only once its target exists, so a crash between the
// two writes leaves the pointer at the previous (still valid) artifact.
func (s *Store) SaveArtifact(_ context.Context, artifact *types.GeneratedArtifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := writeFileAtomic(s.artifactPath(artifact.WorkspaceID, artifact.ID), data); err != nil {
		return fmt.Errorf("save artifact %s: %w", artifact.ID, err)
	}
	if err := writeFileAtomic(s.latestPath(artifact.WorkspaceID), []byte(artifact.ID)); err != nil {
		return fmt.Errorf("update latest pointer: %w", err)
	}
	return nil
}
