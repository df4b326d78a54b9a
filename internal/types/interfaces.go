// internal/types/interfaces.go
package types

import "context"

// WorkspaceStore is the persistence surface for workspaces, chat
// history, and generated artifacts. All operations are synchronous and
// best-effort: I/O failures come back as errors to the immediate
// caller, single unreadable records are skipped during listings, and a
// dangling latest-artifact pointer reads as "no artifact". The store
// applies no locking across calls; serializing writers per workspace is
// the caller's job.
type WorkspaceStore interface {
	ListWorkspaces(ctx context.Context) ([]*Workspace, error)
	CreateWorkspace(ctx context.Context, name string) (*Workspace, error)
	SaveWorkspace(ctx context.Context, ws *Workspace) error
	DeleteWorkspace(ctx context.Context, id WorkspaceID) error
	RenameWorkspace(ctx context.Context, id WorkspaceID, newName string) error

	FetchChatHistory(ctx context.Context, id WorkspaceID) ([]*ChatMessage, error)
	SaveChatMessage(ctx context.Context, msg *ChatMessage) error
	ClearChatHistory(ctx context.Context, id WorkspaceID) error

	LatestArtifact(ctx context.Context, id WorkspaceID) (*GeneratedArtifact, error)
	SaveArtifact(ctx context.Context, artifact *GeneratedArtifact) error
}
