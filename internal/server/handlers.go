package server

import (
	"encoding/json"
	"net/http"

	"github.com/slateview/slateview/internal/server/reqctx"
	"github.com/slateview/slateview/internal/storage/content"
)

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.workspaces.List(r.Context(), reqctx.Tenant(r.Context()))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaces)
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var ws content.Workspace
	if !decodeBody(w, r, &ws) {
		return
	}
	created, err := s.workspaces.Create(r.Context(), reqctx.Tenant(r.Context()), &ws)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var patch content.WorkspacePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := s.workspaces.Update(r.Context(), reqctx.Tenant(r.Context()), r.PathValue("id"), &patch)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.workspaces.Delete(r.Context(), reqctx.Tenant(r.Context()), r.PathValue("id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCanvases(w http.ResponseWriter, r *http.Request) {
	entries, err := s.canvases.List(r.Context(), reqctx.Tenant(r.Context()), r.URL.Query().Get("workspaceId"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateCanvas(w http.ResponseWriter, r *http.Request) {
	var c content.Canvas
	if !decodeBody(w, r, &c) {
		return
	}
	created, err := s.canvases.Create(r.Context(), reqctx.Tenant(r.Context()), &c)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCanvas(w http.ResponseWriter, r *http.Request) {
	c, err := s.canvases.Get(r.Context(), reqctx.Tenant(r.Context()), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCanvas(w http.ResponseWriter, r *http.Request) {
	var patch content.CanvasPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := s.canvases.Update(r.Context(), reqctx.Tenant(r.Context()), r.PathValue("id"), &patch)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCanvas(w http.ResponseWriter, r *http.Request) {
	if err := s.canvases.Delete(r.Context(), reqctx.Tenant(r.Context()), r.PathValue("id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := s.settings.Get(r.Context(), reqctx.Tenant(r.Context()))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if doc == nil {
		doc = json.RawMessage(`{}`)
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var doc json.RawMessage
	if !decodeBody(w, r, &doc) {
		return
	}
	if err := s.settings.Put(r.Context(), reqctx.Tenant(r.Context()), doc); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
