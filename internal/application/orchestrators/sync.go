package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clubhouse/internal/application/syncstore"
)

// SyncDeps lists the synced collections covered by whole-app sync
// operations. The auth collection is deliberately absent: credentials stay
// on the local device.
type SyncDeps struct {
	Stores []*syncstore.Store
}

// SyncResult reports a fan-out over the synced collections.
type SyncResult struct {
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
}

// ExecuteSaveAll pushes every collection to the remote backend in parallel.
// POST: Collections that fail are left dirty; there is no rollback of the
// ones that succeeded
func ExecuteSaveAll(ctx context.Context, deps SyncDeps) SyncResult {
	return fanOut(deps.Stores, func(s *syncstore.Store) bool {
		return s.SaveToCloud(ctx)
	})
}

// ExecuteSyncAll reconciles every collection against the remote backend in
// parallel, last-pull-wins per collection.
// POST: Each successfully synced collection equals its remote snapshot;
// failures leave that collection's local value untouched
func ExecuteSyncAll(ctx context.Context, deps SyncDeps) SyncResult {
	return fanOut(deps.Stores, func(s *syncstore.Store) bool {
		return s.SyncWithCloud(ctx)
	})
}

func fanOut(stores []*syncstore.Store, op func(*syncstore.Store) bool) SyncResult {
	result := SyncResult{Total: len(stores)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, s := range stores {
		wg.Add(1)
		go func(s *syncstore.Store) {
			defer wg.Done()
			ok := op(s)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				result.Succeeded++
			}
			if t, has := s.LastSync(); has {
				if result.LastSync == nil || t.After(*result.LastSync) {
					result.LastSync = &t
				}
			}
		}(s)
	}
	wg.Wait()

	slog.Info("sync_fanout", "total", result.Total, "succeeded", result.Succeeded)
	return result
}
