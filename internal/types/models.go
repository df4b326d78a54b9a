// internal/types/models.go
package types

import "time"

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Workspace is a named container for one conversation and its generated
// artifacts. The ID is immutable once created.
type Workspace struct {
	ID            WorkspaceID `json:"id"`
	Name          string      `json:"name"`
	CreatedAt     time.Time   `json:"created_at"`
	ModifiedAt    time.Time   `json:"modified_at"`
	Favorite      bool        `json:"favorite"`
	GeneratedHTML string      `json:"generated_html,omitempty"`
}

// NewWorkspace creates a workspace with a fresh ID and both timestamps
// set to now.
func NewWorkspace(name string) *Workspace {
	now := time.Now()
	return &Workspace{
		ID:         NewWorkspaceID(),
		Name:       name,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// ChatMessage is one conversation entry. Conversation order is defined
// by Timestamp, not by storage order.
type ChatMessage struct {
	ID          MessageID   `json:"id"`
	WorkspaceID WorkspaceID `json:"workspace_id"`
	Sender      Sender      `json:"sender"`
	Content     string      `json:"content"`
	Timestamp   time.Time   `json:"timestamp"`
	IsError     bool        `json:"is_error"`
}

// NewChatMessage creates a message with a fresh ID timestamped now.
func NewChatMessage(workspaceID WorkspaceID, sender Sender, content string) *ChatMessage {
	return &ChatMessage{
		ID:          NewMessageID(),
		WorkspaceID: workspaceID,
		Sender:      sender,
		Content:     content,
		Timestamp:   time.Now(),
	}
}

// GeneratedArtifact is a complete HTML snapshot produced by one
// generation. Artifacts are immutable once written; a newer result is a
// new record, never an edit of an old one.
type GeneratedArtifact struct {
	ID          ArtifactID  `json:"id"`
	WorkspaceID WorkspaceID `json:"workspace_id"`
	HTMLContent string      `json:"html_content"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewGeneratedArtifact creates an artifact with a fresh ID timestamped now.
func NewGeneratedArtifact(workspaceID WorkspaceID, html string) *GeneratedArtifact {
	return &GeneratedArtifact{
		ID:          NewArtifactID(),
		WorkspaceID: workspaceID,
		HTMLContent: html,
		Timestamp:   time.Now(),
	}
}
