package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/slateview/slateview/internal/objstore"
)

func newTestStore(t *testing.T) objstore.Store {
	t.Helper()
	store, err := objstore.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestNodeDataBundler(t *testing.T) {
	ctx := context.Background()

	t.Run("OffloadHydrateRoundTrip", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		payloads := map[string]string{
			"n1": `{"type":"text","title":"A","content":"hello"}`,
			"n2": `{"type":"table","columns":["a"],"rows":[["1"],["2"]]}`,
			"n3": `{"type":"image","url":"https://example.com/x.png"}`,
		}
		nodes := []*Node{
			{ID: "n1", Data: json.RawMessage(payloads["n1"])},
			{ID: "n2", Data: json.RawMessage(payloads["n2"])},
			{ID: "n3", Data: json.RawMessage(payloads["n3"])},
		}
		if err := b.Offload(ctx, "u1", "c1", nodes); err != nil {
			t.Fatalf("Offload() error = %v", err)
		}
		for _, n := range nodes {
			if n.Data != nil {
				t.Errorf("node %s still carries data after offload", n.ID)
			}
		}
		if err := b.Hydrate(ctx, "u1", "c1", nodes); err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
		for _, n := range nodes {
			if !bytes.Equal(n.Data, []byte(payloads[n.ID])) {
				t.Errorf("node %s data = %s, want %s", n.ID, n.Data, payloads[n.ID])
			}
		}
	})

	t.Run("NoEmptyBundle", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		nodes := []*Node{{ID: "n1"}, {ID: "n2"}}
		if err := b.Offload(ctx, "u1", "c1", nodes); err != nil {
			t.Fatalf("Offload() error = %v", err)
		}
		if _, err := store.Read(ctx, "u1/canvas-data/c1.json"); !errors.Is(err, objstore.ErrNotExist) {
			t.Errorf("bundle should not exist when no node has data, got err = %v", err)
		}
	})

	t.Run("EmptyObjectPayloadIsPreserved", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		nodes := []*Node{
			{ID: "n1", Data: json.RawMessage(`{}`)},
			{ID: "n2", Data: json.RawMessage(`null`)},
		}
		if err := b.Offload(ctx, "u1", "c1", nodes); err != nil {
			t.Fatal(err)
		}
		bundle, err := objstore.GetJSON[map[string]json.RawMessage](ctx, store, "u1/canvas-data/c1.json")
		if err != nil {
			t.Fatal(err)
		}
		if bundle == nil {
			t.Fatal("bundle should exist: an empty object is still a payload")
		}
		if _, ok := (*bundle)["n1"]; !ok {
			t.Error("empty-object payload should be offloaded")
		}
		if _, ok := (*bundle)["n2"]; ok {
			t.Error("null payload should not be offloaded")
		}
	})

	t.Run("LegacyFallback", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		want := `{"type":"text","title":"legacy","content":"old"}`
		ref := LegacyNodePath("u1", "c1", "n1")
		if err := store.Write(ctx, ref, []byte(want)); err != nil {
			t.Fatal(err)
		}
		nodes := []*Node{{ID: "n1", DataRef: ref}}
		if err := b.Hydrate(ctx, "u1", "c1", nodes); err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
		if string(nodes[0].Data) != want {
			t.Errorf("hydrated data = %s, want %s", nodes[0].Data, want)
		}
		if nodes[0].DataRef != "" {
			t.Errorf("_dataRef = %q, want stripped", nodes[0].DataRef)
		}
	})

	t.Run("BundleWinsOverLegacy", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		ref := LegacyNodePath("u1", "c1", "n1")
		if err := store.Write(ctx, ref, []byte(`{"type":"text","title":"old","content":""}`)); err != nil {
			t.Fatal(err)
		}
		nodes := []*Node{{ID: "n1", Data: json.RawMessage(`{"type":"text","title":"new","content":""}`), DataRef: ref}}
		if err := b.Offload(ctx, "u1", "c1", nodes); err != nil {
			t.Fatal(err)
		}
		if err := b.Hydrate(ctx, "u1", "c1", nodes); err != nil {
			t.Fatal(err)
		}
		var d TextData
		if err := json.Unmarshal(nodes[0].Data, &d); err != nil {
			t.Fatal(err)
		}
		if d.Title != "new" {
			t.Errorf("title = %q, want the bundle payload to win", d.Title)
		}
		if nodes[0].DataRef != "" {
			t.Error("_dataRef should be stripped when the bundle is used")
		}
	})

	t.Run("MissingLegacyDocumentGetsDefault", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		okRef := LegacyNodePath("u1", "c1", "n2")
		if err := store.Write(ctx, okRef, []byte(`{"type":"text","title":"ok","content":""}`)); err != nil {
			t.Fatal(err)
		}
		nodes := []*Node{
			{ID: "n1", DataRef: LegacyNodePath("u1", "c1", "n1")}, // No such document.
			{ID: "n2", DataRef: okRef},
		}
		if err := b.Hydrate(ctx, "u1", "c1", nodes); err != nil {
			t.Fatalf("Hydrate() error = %v, want per-node recovery", err)
		}
		if string(nodes[0].Data) != string(defaultNodeData()) {
			t.Errorf("node n1 data = %s, want the safe default", nodes[0].Data)
		}
		var d TextData
		if err := json.Unmarshal(nodes[1].Data, &d); err != nil || d.Title != "ok" {
			t.Errorf("sibling node should hydrate normally, got %s (err %v)", nodes[1].Data, err)
		}
	})

	t.Run("NoSourceAtAllGetsDefault", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		nodes := []*Node{{ID: "n1"}}
		if err := b.Hydrate(ctx, "u1", "c1", nodes); err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
		if string(nodes[0].Data) != string(defaultNodeData()) {
			t.Errorf("data = %s, want the safe default", nodes[0].Data)
		}
	})

	t.Run("NullNodeElementSkipped", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		// A JSON null inside "nodes" decodes to a nil *Node.
		var c Canvas
		if err := json.Unmarshal([]byte(`{"id":"c1","nodes":[null,{"id":"n1","data":{"type":"text","title":"a","content":""}}]}`), &c); err != nil {
			t.Fatal(err)
		}
		if err := b.Offload(ctx, "u1", "c1", c.Nodes); err != nil {
			t.Fatalf("Offload() error = %v", err)
		}
		if err := b.Hydrate(ctx, "u1", "c1", c.Nodes); err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
		var d TextData
		if err := json.Unmarshal(c.Nodes[1].Data, &d); err != nil || d.Title != "a" {
			t.Errorf("sibling of null node should round-trip, got %s (err %v)", c.Nodes[1].Data, err)
		}
	})

	t.Run("ForeignTenantPointerIgnored", func(t *testing.T) {
		store := newTestStore(t)
		b := NewNodeDataBundler(store)
		ref := LegacyNodePath("u2", "c9", "n1")
		if err := store.Write(ctx, ref, []byte(`{"type":"text","title":"secret","content":""}`)); err != nil {
			t.Fatal(err)
		}
		nodes := []*Node{{ID: "n1", DataRef: ref}}
		if err := b.Hydrate(ctx, "u1", "c1", nodes); err != nil {
			t.Fatal(err)
		}
		if string(nodes[0].Data) != string(defaultNodeData()) {
			t.Errorf("cross-tenant pointer must not hydrate, got %s", nodes[0].Data)
		}
	})
}
