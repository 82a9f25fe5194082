package blob

import (
	"context"
	"encoding/json"
	"fmt"

	"clubhouse/internal/adapters/storage/kv"
)

// Mirror implements the synced-store remote backend on the bin service.
// Bin ids are kept in local storage under "<collection>-bin-id" so the
// mapping survives restarts; losing local storage orphans the bins and the
// next save creates fresh ones.
type Mirror struct {
	client *Client
	kv     kv.Store
}

// NewMirror creates a Mirror persisting bin ids through kvs.
func NewMirror(client *Client, kvs kv.Store) *Mirror {
	return &Mirror{client: client, kv: kvs}
}

// Save uploads data for the collection, creating its bin on first use.
// POST: a bin exists for the collection and holds data
func (m *Mirror) Save(ctx context.Context, collection string, data json.RawMessage) error {
	id, ok, err := m.binID(ctx, collection)
	if err != nil {
		return err
	}
	if ok {
		return m.client.Replace(ctx, id, data)
	}

	id, err = m.client.Create(ctx, collection, data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal bin id: %w", err)
	}
	if err := m.kv.Set(ctx, collection+"-bin-id", raw); err != nil {
		return fmt.Errorf("persist bin id for %s: %w", collection, err)
	}
	return nil
}

// Load fetches the collection's bin. ok=false means no bin has been
// created yet for this collection.
func (m *Mirror) Load(ctx context.Context, collection string) (json.RawMessage, bool, error) {
	id, ok, err := m.binID(ctx, collection)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := m.client.Fetch(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (m *Mirror) binID(ctx context.Context, collection string) (string, bool, error) {
	raw, err := m.kv.Get(ctx, collection+"-bin-id")
	if err == kv.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", false, fmt.Errorf("decode bin id for %s: %w", collection, err)
	}
	return id, id != "", nil
}
