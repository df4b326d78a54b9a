// Package state provides filesystem-backed storage for workspaces,
// chat history, and generated artifacts.
package state

import "github.com/user/quickgen/internal/types"

// Compile-time interface compliance check.
var _ types.WorkspaceStore = (*Store)(nil)
