// Package content implements the Slateview document stores: workspaces,
// canvases with offloaded node payloads, and per-tenant AI settings, all on
// top of the objstore key layout described in paths.go.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/maruel/ksid"
	"github.com/slateview/slateview/internal/objstore"
	"github.com/slateview/slateview/internal/storage/infra"
)

// WorkspaceStore persists workspaces and cascades deletes to child canvases.
type WorkspaceStore struct {
	store    objstore.Store
	index    *infra.Index[Workspace]
	canvases *CanvasStore
	now      func() time.Time
}

// NewWorkspaceStore creates a workspace store. Deleting a workspace removes
// its canvases through the given canvas store.
func NewWorkspaceStore(store objstore.Store, cache *infra.Cache, canvases *CanvasStore) *WorkspaceStore {
	return &WorkspaceStore{
		store:    store,
		index:    infra.NewIndex[Workspace](store, cache, workspaceKind),
		canvases: canvases,
		now:      time.Now,
	}
}

// List returns all workspaces for tenant, newest update first.
func (s *WorkspaceStore) List(ctx context.Context, tenant string) ([]Workspace, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	entries, err := s.index.Read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	sortByUpdatedAt(entries, func(w Workspace) (time.Time, string) { return w.UpdatedAt, w.ID })
	return entries, nil
}

// Create persists a new workspace and its index entry. Workspaces are small,
// so the full document and the index projection are identical.
func (s *WorkspaceStore) Create(ctx context.Context, tenant string, w *Workspace) (*Workspace, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	if w.ID == "" {
		w.ID = ksid.NewID().String()
	}
	now := s.now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}
	if w.CanvasIDs == nil {
		w.CanvasIDs = []string{}
	}
	if err := objstore.PutJSON(ctx, s.store, workspacePath(tenant, w.ID), w); err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, tenant, *w); err != nil {
		return nil, err
	}
	return w, nil
}

// Update shallow-merges the patch into the stored workspace and rewrites it.
// Updating a missing workspace returns [ErrWorkspaceNotFound].
func (s *WorkspaceStore) Update(ctx context.Context, tenant, id string, patch *WorkspacePatch) (*Workspace, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	if id == "" {
		return nil, errIDRequired
	}
	w, err := objstore.GetJSON[Workspace](ctx, s.store, workspacePath(tenant, id))
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("workspace %s: %w", id, ErrWorkspaceNotFound)
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Icon != nil {
		w.Icon = *patch.Icon
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	if patch.CanvasIDs != nil {
		w.CanvasIDs = *patch.CanvasIDs
	}
	if patch.Tags != nil {
		w.Tags = *patch.Tags
	}
	if patch.Order != nil {
		w.Order = *patch.Order
	}
	w.UpdatedAt = s.now()
	if err := objstore.PutJSON(ctx, s.store, workspacePath(tenant, id), w); err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, tenant, *w); err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes the workspace and all of its canvases.
//
// Children go first: every child canvas's documents are removed and the
// canvas index rewritten before the workspace document and index entry are
// touched. A crash mid-operation therefore cannot leave canvases that look
// live in the index while their workspace is gone.
func (s *WorkspaceStore) Delete(ctx context.Context, tenant, id string) error {
	if tenant == "" {
		return errTenantRequired
	}
	if id == "" {
		return errIDRequired
	}
	if err := s.canvases.removeWorkspaceCanvases(ctx, tenant, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, workspacePath(tenant, id)); err != nil {
		return err
	}
	return s.index.Remove(ctx, tenant, id)
}
