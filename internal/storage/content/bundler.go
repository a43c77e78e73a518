package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/slateview/slateview/internal/objstore"
)

// NodeDataBundler splits a canvas into metadata (kept inline in the canvas
// document) and per-node payloads (offloaded into one bundle document per
// canvas), and reverses the split on read.
//
// Reading tries each storage generation in order: the current single-bundle
// format, then the legacy per-node-file format. Adding a third generation
// means adding one entry to the reader chain.
type NodeDataBundler struct {
	store   objstore.Store
	readers []bundleReader
}

// NewNodeDataBundler creates a bundler over the given store.
func NewNodeDataBundler(store objstore.Store) *NodeDataBundler {
	return &NodeDataBundler{
		store: store,
		readers: []bundleReader{
			bundleFileReader{store: store},
			legacyNodeFileReader{store: store},
		},
	}
}

// Offload moves every node's non-empty Data payload into an in-memory map
// keyed by node id, clears Data on the nodes, and writes the map as the
// canvas's bundle document. When no node carries a payload nothing is
// written: an empty bundle is a needless object.
//
// Call before every canvas create or update so the canvas document itself
// never exceeds node-metadata size.
func (b *NodeDataBundler) Offload(ctx context.Context, tenant, canvasID string, nodes []*Node) error {
	bundle := make(map[string]json.RawMessage)
	for _, n := range nodes {
		if n == nil {
			// A JSON null element decodes to a nil pointer.
			continue
		}
		if len(n.Data) == 0 || string(n.Data) == "null" {
			// Absent payload, nothing to offload. An explicitly empty object
			// still counts as a payload and is preserved.
			continue
		}
		bundle[n.ID] = n.Data
		n.Data = nil
	}
	if len(bundle) == 0 {
		return nil
	}
	return objstore.PutJSON(ctx, b.store, bundlePath(tenant, canvasID), bundle)
}

// Hydrate restores each node's Data payload in place.
//
// The first storage generation that has payloads for this canvas wins. Any
// node that ends up with no payload from either generation is assigned a safe
// empty default rather than left unset, so a missing payload degrades to an
// empty node instead of a broken one. Per-node failures never abort
// hydration of sibling nodes.
func (b *NodeDataBundler) Hydrate(ctx context.Context, tenant, canvasID string, nodes []*Node) error {
	if len(nodes) == 0 {
		return nil
	}
	for _, r := range b.readers {
		found, err := r.load(ctx, tenant, canvasID, nodes)
		if err != nil {
			return err
		}
		if found {
			break
		}
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if len(n.Data) == 0 {
			n.Data = defaultNodeData()
		}
	}
	return nil
}

// bundleReader loads payloads of one storage generation into the nodes.
// It reports whether this generation had any data for the canvas; transport
// failures are returned, per-node problems are handled locally.
type bundleReader interface {
	load(ctx context.Context, tenant, canvasID string, nodes []*Node) (bool, error)
}

// bundleFileReader reads the current format: one JSON object per canvas
// mapping node id to payload.
type bundleFileReader struct {
	store objstore.Store
}

func (r bundleFileReader) load(ctx context.Context, tenant, canvasID string, nodes []*Node) (bool, error) {
	bundle, err := objstore.GetJSON[map[string]json.RawMessage](ctx, r.store, bundlePath(tenant, canvasID))
	if err != nil {
		return false, err
	}
	if bundle == nil {
		return false, nil
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if data, ok := (*bundle)[n.ID]; ok {
			n.Data = data
		}
		n.DataRef = ""
	}
	return true, nil
}

// legacyNodeFileReader reads the pre-bundling format: one standalone document
// per node, referenced by the node's _dataRef pointer.
type legacyNodeFileReader struct {
	store objstore.Store
}

func (r legacyNodeFileReader) load(ctx context.Context, tenant, canvasID string, nodes []*Node) (bool, error) {
	found := false
	for _, n := range nodes {
		if n == nil || n.DataRef == "" {
			continue
		}
		found = true
		ref := n.DataRef
		n.DataRef = ""
		if !strings.HasPrefix(ref, tenant+"/") {
			// Never read across the tenant boundary, whatever the pointer says.
			slog.WarnContext(ctx, "Ignoring foreign node data pointer", "tenant", tenant, "canvas", canvasID, "node", n.ID)
			continue
		}
		data, err := r.store.Read(ctx, ref)
		if err != nil {
			// Missing or unreadable per-node document. Recovered with the
			// default payload below; siblings keep hydrating.
			slog.WarnContext(ctx, "Failed to hydrate node from legacy document", "tenant", tenant, "canvas", canvasID, "node", n.ID, "err", err)
			continue
		}
		if !json.Valid(data) {
			slog.WarnContext(ctx, "Skipping corrupt legacy node document", "tenant", tenant, "canvas", canvasID, "node", n.ID)
			continue
		}
		n.Data = data
	}
	return found, nil
}
