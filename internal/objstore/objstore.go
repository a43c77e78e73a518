package objstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNotExist reports that a key has no stored object.
//
// Backends wrap their native not-found errors so callers can test with
// [errors.Is] regardless of the backend in use.
var ErrNotExist = errors.New("object does not exist")

// Store is the uninterpreted byte storage every persistence component sits on.
//
// Keys are "/"-separated paths. Implementations must be safe for concurrent
// use. Delete and DeletePrefix are idempotent: deleting an absent key is not
// an error. No atomicity is guaranteed across calls.
type Store interface {
	// Read returns the bytes stored at key, or an error wrapping
	// [ErrNotExist] when the key is absent.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data at key, overwriting any previous value and creating
	// parent path segments implicitly.
	Write(ctx context.Context, key string, data []byte) error
	// Delete removes the object at key. Absence is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every object whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// List returns the keys of every object whose key starts with prefix,
	// in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ValidateKey rejects keys that are empty or attempt path traversal.
//
// Keys come partly from authenticated request data (tenant, entity ids), so
// backends call this before touching the underlying medium.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("key %q must be relative", key)
	}
	for part := range strings.SplitSeq(key, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("key %q contains a traversal segment", key)
		}
	}
	return nil
}

// GetJSON reads and decodes the document at key.
//
// Returns (nil, nil) when the key is absent. A document that exists but
// fails to decode is an error: single-document reads fail loudly.
func GetJSON[T any](ctx context.Context, s Store, key string) (*T, error) {
	data, err := s.Read(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return v, nil
}

// PutJSON encodes v and stores it at key, overwriting any previous document.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Write(ctx, key, data)
}

// ListJSON reads and decodes every document under prefix.
//
// Documents that fail to parse are skipped with a warning so one corrupt
// record never aborts a listing. Used by migration and cleanup only; the hot
// read path enumerates through index documents instead.
func ListJSON[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(keys))
	for _, key := range keys {
		data, err := s.Read(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotExist) {
				// Deleted between List and Read.
				continue
			}
			return nil, err
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			slog.WarnContext(ctx, "Skipping unparsable document", "key", key, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
