// internal/types/ids.go
package types

import "github.com/google/uuid"

type WorkspaceID string
type MessageID string
type ArtifactID string

func NewWorkspaceID() WorkspaceID {
	return WorkspaceID(uuid.New().String())
}

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func NewArtifactID() ArtifactID {
	return ArtifactID(uuid.New().String())
}
