package infra

import (
	"context"
	"fmt"
	"slices"

	"github.com/slateview/slateview/internal/objstore"
)

// Entry is implemented by types that can live in an index document.
type Entry interface {
	EntryID() string
}

// Index maintains one JSON array per (tenant, kind) enumerating all live
// entities of that kind. It is the system's only table scan: listings never
// read the full entity documents.
//
// The index document lives at {tenant}/{kind}-index.json and is fronted by
// the cache so repeated listings skip the store entirely.
//
// Upsert and Remove are read-modify-write on a single document with no
// locking or conditional writes: two concurrent mutations for the same
// tenant and kind can race and one update can be lost. This matches the
// single-editor-per-tenant usage model and is a documented limitation, not a
// bug to be patched locally. Swapping in conditional-write concurrency
// control is a change to this type only; callers are unaffected.
type Index[T Entry] struct {
	store objstore.Store
	cache *Cache
	kind  string
}

// NewIndex creates the index maintenance for one entity kind
// (e.g. "workspaces", "canvases").
func NewIndex[T Entry](store objstore.Store, cache *Cache, kind string) *Index[T] {
	return &Index[T]{store: store, cache: cache, kind: kind}
}

func (ix *Index[T]) key(tenant string) string {
	return tenant + "/" + ix.kind + "-index.json"
}

// Read returns all entries for tenant, cache-first. An absent index document
// reads as empty. The returned slice is the caller's to mutate.
func (ix *Index[T]) Read(ctx context.Context, tenant string) ([]T, error) {
	key := ix.key(tenant)
	if v, ok := ix.cache.Get(key); ok {
		if entries, ok := v.([]T); ok {
			return slices.Clone(entries), nil
		}
	}
	entries, err := objstore.GetJSON[[]T](ctx, ix.store, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s index for %s: %w", ix.kind, tenant, err)
	}
	if entries == nil {
		entries = &[]T{}
	}
	ix.cache.Set(key, *entries)
	return slices.Clone(*entries), nil
}

// Write overwrites the whole index document and updates the cache so readers
// in this process see the write immediately.
func (ix *Index[T]) Write(ctx context.Context, tenant string, entries []T) error {
	if entries == nil {
		entries = []T{}
	}
	key := ix.key(tenant)
	if err := objstore.PutJSON(ctx, ix.store, key, entries); err != nil {
		return fmt.Errorf("failed to write %s index for %s: %w", ix.kind, tenant, err)
	}
	// Cache a copy: the caller keeps the slice and may mutate it.
	ix.cache.Set(key, slices.Clone(entries))
	return nil
}

// Upsert replaces the entry with the same id, or appends it.
// Calling it twice with an identical entry leaves the index unchanged.
func (ix *Index[T]) Upsert(ctx context.Context, tenant string, entry T) error {
	entries, err := ix.Read(ctx, tenant)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(entries, func(e T) bool { return e.EntryID() == entry.EntryID() })
	if i >= 0 {
		entries[i] = entry
	} else {
		entries = append(entries, entry)
	}
	return ix.Write(ctx, tenant, entries)
}

// Remove deletes the entry with the given id. Removing an id that is not
// present is a no-op.
func (ix *Index[T]) Remove(ctx context.Context, tenant, id string) error {
	entries, err := ix.Read(ctx, tenant)
	if err != nil {
		return err
	}
	filtered := slices.DeleteFunc(entries, func(e T) bool { return e.EntryID() == id })
	return ix.Write(ctx, tenant, filtered)
}
