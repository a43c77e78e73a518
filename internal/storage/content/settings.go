package content

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/slateview/slateview/internal/objstore"
)

// SettingsStore persists the per-tenant AI settings document verbatim.
//
// The document's shape belongs to the UI and the AI proxy; storage passes it
// through untouched so settings written by older clients survive round-trips.
type SettingsStore struct {
	store objstore.Store
}

// NewSettingsStore creates a settings store.
func NewSettingsStore(store objstore.Store) *SettingsStore {
	return &SettingsStore{store: store}
}

// Get returns the raw settings document, or nil when none was ever saved.
func (s *SettingsStore) Get(ctx context.Context, tenant string) (json.RawMessage, error) {
	if tenant == "" {
		return nil, errTenantRequired
	}
	data, err := s.store.Read(ctx, settingsPath(tenant))
	if err != nil {
		if errors.Is(err, objstore.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Put overwrites the settings document. The payload must be valid JSON but
// is otherwise uninterpreted.
func (s *SettingsStore) Put(ctx context.Context, tenant string, doc json.RawMessage) error {
	if tenant == "" {
		return errTenantRequired
	}
	if !json.Valid(doc) {
		return errors.New("settings document is not valid JSON")
	}
	return s.store.Write(ctx, settingsPath(tenant), doc)
}
