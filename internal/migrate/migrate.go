// Package migrate rewrites a legacy normalized export into the object-store
// document layout.
//
// The legacy store keeps one top-level collection per entity type:
//
//	users/{uid}.json
//	workspaces/{uid}/{workspaceId}.json
//	canvases/{uid}/{canvasId}.json      node payloads inline
//	settings/{uid}/ai.json
//
// The migration is additive-only: the source store is never written to, so a
// run can be repeated and verified against the source before cutover. Node
// payloads are offloaded into individual per-node documents with a _dataRef
// pointer - the first-generation layout the bundler still reads - keeping
// the migrated data readable without also migrating it to the bundle format.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/slateview/slateview/internal/objstore"
	"github.com/slateview/slateview/internal/storage/content"
)

// Stats tallies migrated documents so a human can reconcile counts against
// the source store.
type Stats struct {
	Tenants    int
	Workspaces int
	Canvases   int
	Nodes      int
	Settings   int
}

// Migrator copies every tenant from src into dst.
type Migrator struct {
	src    objstore.Store
	dst    objstore.Store
	out    io.Writer
	dryRun bool
}

// New creates a migrator. Progress goes to out.
func New(src, dst objstore.Store, out io.Writer, dryRun bool) *Migrator {
	return &Migrator{src: src, dst: dst, out: out, dryRun: dryRun}
}

// Run migrates every discovered tenant and returns the final tally.
func (m *Migrator) Run(ctx context.Context) (*Stats, error) {
	tenants, err := m.discoverTenants(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{}
	for _, tenant := range tenants {
		fmt.Fprintf(m.out, "Migrating tenant %s...\n", tenant)
		if err := m.migrateTenant(ctx, tenant, stats); err != nil {
			return stats, fmt.Errorf("tenant %s: %w", tenant, err)
		}
		stats.Tenants++
	}
	fmt.Fprintf(m.out, "\nDone: %d tenants, %d workspaces, %d canvases, %d nodes, %d settings\n",
		stats.Tenants, stats.Workspaces, stats.Canvases, stats.Nodes, stats.Settings)
	return stats, nil
}

// discoverTenants scans every known collection for tenant ids. Profile
// records alone are not enough: a tenant with workspaces but no users/
// document must still be migrated.
func (m *Migrator) discoverTenants(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	// users/{uid}.json
	keys, err := m.src.List(ctx, "users/")
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		name := strings.TrimPrefix(key, "users/")
		if uid, ok := strings.CutSuffix(name, ".json"); ok && !strings.Contains(uid, "/") {
			seen[uid] = true
		}
	}
	// {collection}/{uid}/...
	for _, collection := range []string{"workspaces/", "canvases/", "settings/"} {
		keys, err := m.src.List(ctx, collection)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			rest := strings.TrimPrefix(key, collection)
			if uid, _, ok := strings.Cut(rest, "/"); ok && uid != "" {
				seen[uid] = true
			}
		}
	}
	tenants := make([]string, 0, len(seen))
	for uid := range seen {
		tenants = append(tenants, uid)
	}
	sort.Strings(tenants)
	return tenants, nil
}

func (m *Migrator) migrateTenant(ctx context.Context, tenant string, stats *Stats) error {
	if err := m.migrateWorkspaces(ctx, tenant, stats); err != nil {
		return err
	}
	if err := m.migrateCanvases(ctx, tenant, stats); err != nil {
		return err
	}
	return m.migrateSettings(ctx, tenant, stats)
}

// migrateWorkspaces copies each workspace document verbatim and rebuilds the
// per-tenant workspace index.
func (m *Migrator) migrateWorkspaces(ctx context.Context, tenant string, stats *Stats) error {
	keys, err := m.src.List(ctx, "workspaces/"+tenant+"/")
	if err != nil {
		return err
	}
	var index []content.Workspace
	for _, key := range keys {
		data, err := m.src.Read(ctx, key)
		if err != nil {
			return err
		}
		var w content.Workspace
		if err := json.Unmarshal(data, &w); err != nil {
			fmt.Fprintf(m.out, "  skipping unparsable workspace %s: %v\n", key, err)
			continue
		}
		if !m.dryRun {
			if err := m.dst.Write(ctx, tenant+"/workspaces/"+w.ID+".json", data); err != nil {
				return err
			}
		}
		index = append(index, w)
		stats.Workspaces++
	}
	fmt.Fprintf(m.out, "  %d workspaces\n", len(index))
	if m.dryRun || index == nil {
		return nil
	}
	return objstore.PutJSON(ctx, m.dst, tenant+"/workspaces-index.json", index)
}

// migrateCanvases rewrites each canvas with node payloads offloaded into
// individual per-node documents, and rebuilds the canvas index.
func (m *Migrator) migrateCanvases(ctx context.Context, tenant string, stats *Stats) error {
	canvases, err := objstore.ListJSON[content.Canvas](ctx, m.src, "canvases/"+tenant+"/")
	if err != nil {
		return err
	}
	var index []content.CanvasIndexEntry
	for i := range canvases {
		c := &canvases[i]
		// Legacy exports can carry JSON null node elements; drop them so the
		// rewritten document is clean and the offload loop never sees a nil.
		nodes := c.Nodes[:0]
		for _, n := range c.Nodes {
			if n != nil {
				nodes = append(nodes, n)
			}
		}
		c.Nodes = nodes
		nodeCount := 0
		for _, n := range c.Nodes {
			if len(n.Data) == 0 || string(n.Data) == "null" {
				continue
			}
			ref := content.LegacyNodePath(tenant, c.ID, n.ID)
			if !m.dryRun {
				if err := m.dst.Write(ctx, ref, n.Data); err != nil {
					return err
				}
			}
			n.Data = nil
			n.DataRef = ref
			nodeCount++
		}
		if !m.dryRun {
			if err := objstore.PutJSON(ctx, m.dst, tenant+"/canvases/"+c.ID+".json", c); err != nil {
				return err
			}
		}
		index = append(index, content.CanvasIndexEntry{
			ID:          c.ID,
			Title:       c.Title,
			WorkspaceID: c.WorkspaceID,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
			NodeCount:   len(c.Nodes),
		})
		stats.Canvases++
		stats.Nodes += nodeCount
	}
	fmt.Fprintf(m.out, "  %d canvases\n", len(index))
	if m.dryRun || index == nil {
		return nil
	}
	return objstore.PutJSON(ctx, m.dst, tenant+"/canvases-index.json", index)
}

// migrateSettings copies the AI settings document verbatim, if present.
func (m *Migrator) migrateSettings(ctx context.Context, tenant string, stats *Stats) error {
	data, err := m.src.Read(ctx, "settings/"+tenant+"/ai.json")
	if err != nil {
		if errors.Is(err, objstore.ErrNotExist) {
			return nil
		}
		return err
	}
	if !m.dryRun {
		if err := m.dst.Write(ctx, tenant+"/settings/ai.json", data); err != nil {
			return err
		}
	}
	stats.Settings++
	fmt.Fprintf(m.out, "  settings copied\n")
	return nil
}
