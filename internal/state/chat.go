// internal/state/chat.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/quickgen/internal/types"
)

func (s *Store) chatDir(id types.WorkspaceID) string {
	return filepath.Join(s.workspaceDir(id), "chat")
}

func (s *Store) messagePath(workspaceID types.WorkspaceID, messageID types.MessageID) string {
	return filepath.Join(s.chatDir(workspaceID), string(messageID)+".json")
}

func (s *Store) loadMessage(path string) (*types.ChatMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chat message: %w", err)
	}
	var msg types.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal chat message: %w", err)
	}
	return &msg, nil
}

// FetchChatHistory reads every message record under the workspace's
// chat directory and returns them sorted ascending by timestamp.
// Records on disk are unordered; timestamp defines conversation order.
// Unparseable records are skipped.
func (s *Store) FetchChatHistory(_ context.Context, id types.WorkspaceID) ([]*types.ChatMessage, error) {
	entries, err := os.ReadDir(s.chatDir(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chat dir: %w", err)
	}

	var messages []*types.ChatMessage
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		msg, err := s.loadMessage(filepath.Join(s.chatDir(id), entry.Name()))
		if err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// SaveChatMessage writes one record per message, keyed by message ID.
// Saving an ID that already exists fully rewrites the record in place,
// which is how streaming updates persist a growing assistant message.
func (s *Store) SaveChatMessage(_ context.Context, msg *types.ChatMessage) error {
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}
	if err := writeFileAtomic(s.messagePath(msg.WorkspaceID, msg.ID), data); err != nil {
		return fmt.Errorf("save chat message %s: %w", msg.ID, err)
	}
	return nil
}

// ClearChatHistory deletes all message records for the workspace.
func (s *Store) ClearChatHistory(_ context.Context, id types.WorkspaceID) error {
	entries, err := os.ReadDir(s.chatDir(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read chat dir: %w", err)
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(s.chatDir(id), entry.Name())); err != nil {
			return fmt.Errorf("remove chat message: %w", err)
		}
	}
	return nil
}
