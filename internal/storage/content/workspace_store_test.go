package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/slateview/slateview/internal/objstore"
)

func TestWorkspaceStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndList", func(t *testing.T) {
		_, _, ws := newTestStores(t)
		if _, err := ws.Create(ctx, "u1", &Workspace{ID: "w1", Name: "First"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := ws.Create(ctx, "u1", &Workspace{ID: "w2", Name: "Second"}); err != nil {
			t.Fatal(err)
		}
		got, err := ws.List(ctx, "u1")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List() returned %d workspaces, want 2", len(got))
		}
		if got[0].ID != "w2" || got[1].ID != "w1" {
			t.Errorf("List() order = %s, %s, want newest first", got[0].ID, got[1].ID)
		}
		if got[1].CanvasIDs == nil {
			t.Error("canvasIds should default to an empty list, not null")
		}
	})

	t.Run("ListOtherTenantEmpty", func(t *testing.T) {
		_, _, ws := newTestStores(t)
		if _, err := ws.Create(ctx, "u1", &Workspace{ID: "w1", Name: "Mine"}); err != nil {
			t.Fatal(err)
		}
		got, err := ws.List(ctx, "u2")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("List() for other tenant = %v, want empty", got)
		}
	})

	t.Run("Update", func(t *testing.T) {
		_, _, ws := newTestStores(t)
		if _, err := ws.Create(ctx, "u1", &Workspace{ID: "w1", Name: "Old", Icon: "📚"}); err != nil {
			t.Fatal(err)
		}
		got, err := ws.Update(ctx, "u1", "w1", &WorkspacePatch{Name: strPtr("New")})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.Name != "New" || got.Icon != "📚" {
			t.Errorf("Update() = %+v, want name replaced and icon kept", got)
		}
		if !got.UpdatedAt.After(got.CreatedAt) {
			t.Error("UpdatedAt should advance on update")
		}
		list, err := ws.List(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if list[0].Name != "New" {
			t.Errorf("index entry name = %q, want %q", list[0].Name, "New")
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		_, _, ws := newTestStores(t)
		if _, err := ws.Update(ctx, "u1", "ghost", &WorkspacePatch{Name: strPtr("x")}); !errors.Is(err, ErrWorkspaceNotFound) {
			t.Errorf("Update() error = %v, want ErrWorkspaceNotFound", err)
		}
	})

	t.Run("CascadeDelete", func(t *testing.T) {
		store, cs, ws := newTestStores(t)
		if _, err := ws.Create(ctx, "u1", &Workspace{ID: "w1", Name: "Demo"}); err != nil {
			t.Fatal(err)
		}
		if _, err := ws.Create(ctx, "u1", &Workspace{ID: "w2", Name: "Other"}); err != nil {
			t.Fatal(err)
		}
		payload := json.RawMessage(`{"type":"text","title":"","content":"x"}`)
		for _, c := range []*Canvas{
			{ID: "c1", WorkspaceID: "w1", Nodes: []*Node{{ID: "n1", Data: payload}}},
			{ID: "c2", WorkspaceID: "w1", Nodes: []*Node{{ID: "n1", Data: payload}}},
			{ID: "c3", WorkspaceID: "w2", Nodes: []*Node{{ID: "n1", Data: payload}}},
		} {
			if _, err := cs.Create(ctx, "u1", c); err != nil {
				t.Fatal(err)
			}
		}

		if err := ws.Delete(ctx, "u1", "w1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		// All of w1's canvas documents and bundles are gone.
		for _, key := range []string{
			"u1/canvases/c1.json", "u1/canvases/c2.json",
			"u1/canvas-data/c1.json", "u1/canvas-data/c2.json",
			"u1/workspaces/w1.json",
		} {
			if _, err := store.Read(ctx, key); !errors.Is(err, objstore.ErrNotExist) {
				t.Errorf("%s should be gone, got err = %v", key, err)
			}
		}
		// The canvas index keeps exactly the other workspace's canvases.
		entries, err := cs.List(ctx, "u1", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].ID != "c3" {
			t.Errorf("canvas index after cascade = %v, want only c3", entries)
		}
		// And the workspace index no longer lists w1.
		spaces, err := ws.List(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(spaces) != 1 || spaces[0].ID != "w2" {
			t.Errorf("workspace index after delete = %v, want only w2", spaces)
		}
	})

	t.Run("GeneratesIDWhenAbsent", func(t *testing.T) {
		_, _, ws := newTestStores(t)
		got, err := ws.Create(ctx, "u1", &Workspace{Name: "auto"})
		if err != nil {
			t.Fatal(err)
		}
		if got.ID == "" {
			t.Error("Create() should assign an id")
		}
	})
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	s := NewSettingsStore(store)

	t.Run("AbsentIsNil", func(t *testing.T) {
		got, err := s.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != nil {
			t.Errorf("Get() = %s, want nil", got)
		}
	})

	t.Run("VerbatimRoundTrip", func(t *testing.T) {
		doc := json.RawMessage(`{"provider":"openai","model":"gpt-4","extra":{"unknown":true}}`)
		if err := s.Put(ctx, "u1", doc); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(doc) {
			t.Errorf("Get() = %s, want the document verbatim", got)
		}
	})

	t.Run("RejectsInvalidJSON", func(t *testing.T) {
		if err := s.Put(ctx, "u1", json.RawMessage(`{broken`)); err == nil {
			t.Error("Put() of invalid JSON should fail")
		}
	})
}

func TestDecodeNodeData(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want any
	}{
		{"text", `{"type":"text","title":"T","content":"C"}`, &TextData{Type: "text", Title: "T", Content: "C"}},
		{"table", `{"type":"table","columns":["a"],"rows":[["1"]]}`, &TableData{Type: "table", Columns: []string{"a"}, Rows: [][]string{{"1"}}}},
		{"image", `{"type":"image","url":"u","alt":"a"}`, &ImageData{Type: "image", URL: "u", Alt: "a"}},
		{"pdf", `{"type":"pdf","url":"u","page":3}`, &PDFData{Type: "pdf", URL: "u", Page: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeNodeData(json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("DecodeNodeData() error = %v", err)
			}
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tc.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("DecodeNodeData() = %s, want %s", gotJSON, wantJSON)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := DecodeNodeData(json.RawMessage(`{"type":"hologram"}`)); err == nil {
			t.Error("DecodeNodeData() of unknown type should fail")
		}
	})
}
