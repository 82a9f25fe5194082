// Package syncstore provides the local-first synced store: one logical
// JSON value per collection, durable in local storage, opportunistically
// mirrored to a remote backend.
package syncstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"clubhouse/internal/adapters/storage/kv"
)

// Mirror is a remote backend holding one snapshot per collection.
// Load reports ok=false when no snapshot exists yet for the collection.
type Mirror interface {
	Save(ctx context.Context, collection string, data json.RawMessage) error
	Load(ctx context.Context, collection string) (data json.RawMessage, ok bool, err error)
}

// Store is a single-owner cache over one collection. Reads never touch the
// network; writes persist locally before returning and mirror remotely in
// the background. Reconciliation is last-pull-wins: a fetched remote value
// replaces the local one unconditionally, however recent the local edits.
//
// There is no internal mutual exclusion across overlapping SetData calls
// beyond the value lock; two concurrent writers race and the last response
// wins, as the single-writer usage model assumes.
type Store struct {
	name   string
	kv     kv.Store
	mirror Mirror // nil when no remote backend is configured

	mu       sync.RWMutex
	data     json.RawMessage
	dirty    bool
	lastSync time.Time
}

// New opens the store for a collection, seeding local storage with the
// initial value on first run.
// PRE: initial marshals to JSON
// POST: Data() returns the persisted value; last-sync bookkeeping is loaded
func New(ctx context.Context, name string, kvs kv.Store, mirror Mirror, initial any) (*Store, error) {
	s := &Store{name: name, kv: kvs, mirror: mirror}

	data, err := kvs.Get(ctx, name)
	if err == kv.ErrNotFound {
		data, err = json.Marshal(initial)
		if err != nil {
			return nil, fmt.Errorf("marshal initial %s: %w", name, err)
		}
		if err := kvs.Set(ctx, name, data); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	s.data = data

	if raw, err := kvs.Get(ctx, name+"-last-sync"); err == nil {
		var stamp string
		if json.Unmarshal(raw, &stamp) == nil {
			if t, err := time.Parse(time.RFC3339, stamp); err == nil {
				s.lastSync = t
			}
		}
	}

	return s, nil
}

// Name returns the collection name.
func (s *Store) Name() string { return s.name }

// Configured reports whether a remote mirror is attached.
func (s *Store) Configured() bool { return s.mirror != nil }

// Data returns the current local value. Never blocks on the network.
func (s *Store) Data() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Decode unmarshals the current local value into v.
func (s *Store) Decode(v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Unmarshal(s.data, v)
}

// SetData persists v locally and returns once the local write is durable.
// The remote mirror write happens in the background; its failure is logged
// and swallowed, leaving the local copy authoritative until the next
// successful sync.
// POST: on nil return the local value is durable and Data() reflects v
func (s *Store) SetData(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.name, err)
	}
	if err := s.kv.Set(ctx, s.name, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.dirty = true
	s.mu.Unlock()

	if s.mirror != nil {
		// Fire-and-forget: deliberately detached from the caller's
		// context, an in-flight mirror write cannot be cancelled.
		go s.mirrorWrite(data)
	}
	return nil
}

func (s *Store) mirrorWrite(data json.RawMessage) {
	if err := s.mirror.Save(context.Background(), s.name, data); err != nil {
		slog.Warn("sync_mirror_write_failed", "collection", s.name, "err", err)
		return
	}
	s.markSynced(context.Background())
}

// SaveToCloud pushes the current local value to the remote mirror and
// reports success. An unconfigured store reports false without error.
func (s *Store) SaveToCloud(ctx context.Context) bool {
	if s.mirror == nil {
		slog.Warn("sync_unconfigured", "collection", s.name)
		return false
	}
	if err := s.mirror.Save(ctx, s.name, s.Data()); err != nil {
		slog.Error("sync_save_failed", "collection", s.name, "err", err)
		return false
	}
	s.markSynced(ctx)
	slog.Info("sync_saved", "collection", s.name)
	return true
}

// LoadFromCloud fetches the mirrored value. The three absent conditions —
// no remote snapshot yet, no backend configured, request failure — are not
// distinguished: all report ok=false. Local state is not mutated.
func (s *Store) LoadFromCloud(ctx context.Context) (json.RawMessage, bool) {
	if s.mirror == nil {
		return nil, false
	}
	data, ok, err := s.mirror.Load(ctx, s.name)
	if err != nil {
		slog.Error("sync_load_failed", "collection", s.name, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	s.markSynced(ctx)
	return data, true
}

// SyncWithCloud reconciles local state against the remote mirror:
// last-pull-wins, no merge, no conflict detection. Reports whether a remote
// value was applied.
// POST: on true, Data() equals the fetched remote value and it is durable
func (s *Store) SyncWithCloud(ctx context.Context) bool {
	data, ok := s.LoadFromCloud(ctx)
	if !ok {
		return false
	}
	if err := s.kv.Set(ctx, s.name, data); err != nil {
		slog.Error("sync_local_write_failed", "collection", s.name, "err", err)
		return false
	}
	s.mu.Lock()
	s.data = data
	s.dirty = false
	s.mu.Unlock()
	slog.Info("sync_loaded", "collection", s.name)
	return true
}

// LastSync returns the time of the last successful remote exchange.
func (s *Store) LastSync() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, !s.lastSync.IsZero()
}

// Dirty reports whether local edits have not yet reached the mirror.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Store) markSynced(ctx context.Context) {
	now := time.Now().UTC()
	s.mu.Lock()
	s.dirty = false
	s.lastSync = now
	s.mu.Unlock()

	stamp, _ := json.Marshal(now.Format(time.RFC3339))
	if err := s.kv.Set(ctx, s.name+"-last-sync", stamp); err != nil {
		slog.Warn("sync_stamp_write_failed", "collection", s.name, "err", err)
	}
}
