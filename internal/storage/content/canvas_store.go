package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/maruel/ksid"
	"github.com/slateview/slateview/internal/objstore"
	"github.com/slateview/slateview/internal/storage/infra"
)

// CanvasStore persists canvases for the API layer.
//
// Canvas documents are stored with per-node payloads offloaded (see
// [NodeDataBundler]); the per-tenant canvas index holds projections only.
// All read-modify-write paths share the index's lost-update race profile.
type CanvasStore struct {
	store   objstore.Store
	index   *infra.Index[CanvasIndexEntry]
	bundler *NodeDataBundler
	now     func() time.Time
}

// NewCanvasStore creates a canvas store sharing the given cache.
func NewCanvasStore(store objstore.Store, cache *infra.Cache) *CanvasStore {
	return &CanvasStore{
		store:   store,
		index:   infra.NewIndex[CanvasIndexEntry](store, cache, canvasKind),
		bundler: NewNodeDataBundler(store),
		now:     time.Now,
	}
}

// List returns the canvas projections for tenant, newest update first.
// A non-empty workspaceID filters to that workspace's canvases.
func (s *CanvasStore) List(ctx context.Context, tenant, workspaceID string) ([]CanvasIndexEntry, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	entries, err := s.index.Read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if workspaceID != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.WorkspaceID == workspaceID {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	sortByUpdatedAt(entries, func(e CanvasIndexEntry) (time.Time, string) { return e.UpdatedAt, e.ID })
	return entries, nil
}

// Get returns the full canvas with node payloads hydrated in place.
func (s *CanvasStore) Get(ctx context.Context, tenant, id string) (*Canvas, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	if id == "" {
		return nil, errIDRequired
	}
	c, err := objstore.GetJSON[Canvas](ctx, s.store, canvasPath(tenant, id))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("canvas %s: %w", id, ErrCanvasNotFound)
	}
	if err := s.bundler.Hydrate(ctx, tenant, id, c.Nodes); err != nil {
		return nil, err
	}
	return c, nil
}

// Create persists a new canvas and its index projection. Node payloads are
// offloaded first, so the written canvas document never carries inline data.
//
// The parent workspace's canvasIds list is not updated here; that
// back-reference belongs to the caller.
func (s *CanvasStore) Create(ctx context.Context, tenant string, c *Canvas) (*Canvas, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	if c.ID == "" {
		c.ID = ksid.NewID().String()
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	c.Nodes = compactNodes(c.Nodes)
	if c.Edges == nil {
		c.Edges = []Edge{}
	}
	// Projection is taken before offloading strips the nodes.
	entry := canvasMetaForIndex(c)
	if err := s.bundler.Offload(ctx, tenant, c.ID, c.Nodes); err != nil {
		return nil, err
	}
	if err := objstore.PutJSON(ctx, s.store, canvasPath(tenant, c.ID), c); err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, tenant, entry); err != nil {
		return nil, err
	}
	return c, nil
}

// Update shallow-merges the patch into the stored canvas and rewrites it.
//
// A missing canvas is not an error: the merge starts from an empty document
// (update-as-upsert). Nodes in the patch have their payloads offloaded
// before the merge, so the stored document stays data-free.
func (s *CanvasStore) Update(ctx context.Context, tenant, id string, patch *CanvasPatch) (*Canvas, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	if id == "" {
		return nil, errIDRequired
	}
	if patch.Nodes != nil {
		*patch.Nodes = compactNodes(*patch.Nodes)
		if err := s.bundler.Offload(ctx, tenant, id, *patch.Nodes); err != nil {
			return nil, err
		}
	}
	c, err := objstore.GetJSON[Canvas](ctx, s.store, canvasPath(tenant, id))
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &Canvas{ID: id, CreatedAt: s.now()}
	}
	if patch.WorkspaceID != nil {
		c.WorkspaceID = *patch.WorkspaceID
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Template != nil {
		c.Template = *patch.Template
	}
	if patch.Modules != nil {
		c.Modules = *patch.Modules
	}
	if patch.Nodes != nil {
		c.Nodes = *patch.Nodes
	}
	if patch.Edges != nil {
		c.Edges = *patch.Edges
	}
	if patch.Viewport != nil {
		c.Viewport = patch.Viewport
	}
	c.UpdatedAt = s.now()
	if err := objstore.PutJSON(ctx, s.store, canvasPath(tenant, id), c); err != nil {
		return nil, err
	}
	// Projection from the merged, unhydrated document.
	if err := s.index.Upsert(ctx, tenant, canvasMetaForIndex(c)); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the canvas document, its bundle, and any legacy per-node
// documents, then drops it from the index. Deleting an absent canvas is a
// no-op.
func (s *CanvasStore) Delete(ctx context.Context, tenant, id string) error {
	if tenant == "" {
		return errTenantRequired
	}
	if id == "" {
		return errIDRequired
	}
	if err := s.deleteArtifacts(ctx, tenant, id); err != nil {
		return err
	}
	return s.index.Remove(ctx, tenant, id)
}

// deleteArtifacts removes everything stored for a canvas except its index
// entry: the bundle, the legacy per-node prefix (both storage generations),
// and the canvas document itself.
func (s *CanvasStore) deleteArtifacts(ctx context.Context, tenant, id string) error {
	if err := s.store.Delete(ctx, bundlePath(tenant, id)); err != nil {
		return err
	}
	if err := s.store.DeletePrefix(ctx, legacyNodePrefix(tenant, id)); err != nil {
		return err
	}
	return s.store.Delete(ctx, canvasPath(tenant, id))
}

// removeWorkspaceCanvases deletes every canvas belonging to workspaceID.
// Child artifacts are fully removed before the filtered index is written
// back, so a crash mid-way leaves at worst stale index entries for missing
// canvases rather than live entries for a gone workspace.
func (s *CanvasStore) removeWorkspaceCanvases(ctx context.Context, tenant, workspaceID string) error {
	entries, err := s.index.Read(ctx, tenant)
	if err != nil {
		return err
	}
	keep := entries[:0]
	for _, e := range entries {
		if e.WorkspaceID != workspaceID {
			keep = append(keep, e)
			continue
		}
		if err := s.deleteArtifacts(ctx, tenant, e.ID); err != nil {
			return err
		}
	}
	return s.index.Write(ctx, tenant, keep)
}

// compactNodes drops nil elements, which a JSON null inside "nodes" decodes
// to, so stored canvas documents never carry null nodes. Never returns nil.
func compactNodes(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// canvasMetaForIndex projects a canvas onto its index entry. The node count
// is taken from the node list length, which offloading does not change, but
// the projection is still computed before stripping by convention.
func canvasMetaForIndex(c *Canvas) CanvasIndexEntry {
	return CanvasIndexEntry{
		ID:          c.ID,
		Title:       c.Title,
		WorkspaceID: c.WorkspaceID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		NodeCount:   len(c.Nodes),
	}
}

// sortByUpdatedAt orders entries newest first, breaking timestamp ties by id
// descending so repeated listings are deterministic.
func sortByUpdatedAt[T any](entries []T, key func(T) (time.Time, string)) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, idi := key(entries[i])
		tj, idj := key(entries[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}
