package objstore

import (
	"context"
	"testing"
)

type testDoc struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("RoundTrip", func(t *testing.T) {
		want := testDoc{ID: "d1", Title: "hello"}
		if err := PutJSON(ctx, store, "u1/docs/d1.json", want); err != nil {
			t.Fatalf("PutJSON() error = %v", err)
		}
		got, err := GetJSON[testDoc](ctx, store, "u1/docs/d1.json")
		if err != nil {
			t.Fatalf("GetJSON() error = %v", err)
		}
		if got == nil || *got != want {
			t.Errorf("GetJSON() = %v, want %v", got, want)
		}
	})

	t.Run("AbsentIsNil", func(t *testing.T) {
		got, err := GetJSON[testDoc](ctx, store, "u1/docs/missing.json")
		if err != nil {
			t.Fatalf("GetJSON() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetJSON() = %v, want nil", got)
		}
	})

	t.Run("CorruptFailsLoudly", func(t *testing.T) {
		if err := store.Write(ctx, "u1/docs/bad.json", []byte(`{not json`)); err != nil {
			t.Fatal(err)
		}
		if _, err := GetJSON[testDoc](ctx, store, "u1/docs/bad.json"); err == nil {
			t.Error("GetJSON() of corrupt document should fail")
		}
	})
}

func TestListJSON(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := PutJSON(ctx, store, "u1/docs/a.json", testDoc{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := PutJSON(ctx, store, "u1/docs/b.json", testDoc{ID: "b"}); err != nil {
		t.Fatal(err)
	}
	// A corrupt sibling must not abort the listing.
	if err := store.Write(ctx, "u1/docs/corrupt.json", []byte(`%%%`)); err != nil {
		t.Fatal(err)
	}

	docs, err := ListJSON[testDoc](ctx, store, "u1/docs/")
	if err != nil {
		t.Fatalf("ListJSON() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ListJSON() returned %d docs, want 2 (corrupt entry skipped)", len(docs))
	}
	if docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("ListJSON() = %v, want a then b", docs)
	}
}
