// internal/preview/server.go
package preview

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/user/quickgen/internal/types"
)

// Server is a lightweight HTTP handler that renders workspace previews
// in a browser: an index of workspaces, each workspace's latest
// generated page, and JSON endpoints for tooling.
type Server struct {
	store types.WorkspaceStore
	mux   *http.ServeMux
}

// NewServer creates a preview Server over the given store.
func NewServer(store types.WorkspaceStore) *Server {
	s := &Server{
		store: store,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/workspaces", s.handleAPIWorkspaces)
	s.mux.HandleFunc("GET /api/workspaces/{id}/messages", s.handleAPIMessages)
	s.mux.HandleFunc("GET /workspaces/{id}", s.handlePreview)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.store.ListWorkspaces(r.Context())
	if err != nil {
		slog.Error("list workspaces", "error", err)
		http.Error(w, "failed to list workspaces", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!DOCTYPE html><html><head><title>quickgen</title></head><body><h1>Workspaces</h1><ul>")
	for _, ws := range workspaces {
		fmt.Fprintf(w, `<li><a href="/workspaces/%s">%s</a> (modified %s)</li>`,
			html.EscapeString(string(ws.ID)),
			html.EscapeString(ws.Name),
			ws.ModifiedAt.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Fprint(w, "</ul></body></html>")
}

// handlePreview serves the workspace's latest generated page as-is.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := types.WorkspaceID(r.PathValue("id"))

	artifact, err := s.store.LatestArtifact(r.Context(), id)
	if err != nil {
		slog.Error("load latest artifact", "workspace_id", string(id), "error", err)
		http.Error(w, "failed to load artifact", http.StatusInternalServerError)
		return
	}
	if artifact == nil {
		http.Error(w, "no generated page for this workspace yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, artifact.HTMLContent)
}

func (s *Server) handleAPIWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.store.ListWorkspaces(r.Context())
	if err != nil {
		http.Error(w, `{"error":"failed to list workspaces"}`, http.StatusInternalServerError)
		return
	}
	if workspaces == nil {
		workspaces = []*types.Workspace{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(workspaces)
}

func (s *Server) handleAPIMessages(w http.ResponseWriter, r *http.Request) {
	id := types.WorkspaceID(r.PathValue("id"))

	messages, err := s.store.FetchChatHistory(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"failed to load history"}`, http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []*types.ChatMessage{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
