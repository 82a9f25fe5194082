package orchestrators

import (
	"context"
	"testing"

	"clubhouse/internal/application/syncstore"
)

func TestExecuteSaveAll_CountsPartialFailure(t *testing.T) {
	good := newFakeMirror()
	bad := newFakeMirror()
	bad.fail = true

	deps := SyncDeps{Stores: []*syncstore.Store{
		newStore(t, "members", good, []string{}),
		newStore(t, "payments", good, []string{}),
		newStore(t, "schedule", bad, []string{}),
		newStore(t, "settings", bad, map[string]string{}),
	}}

	result := ExecuteSaveAll(context.Background(), deps)
	if result.Total != 4 {
		t.Errorf("Total=%d want 4", result.Total)
	}
	if result.Succeeded != 2 {
		t.Errorf("Succeeded=%d want 2, failures must not abort the rest", result.Succeeded)
	}
	if result.LastSync == nil {
		t.Error("LastSync must reflect the successful saves")
	}
}

func TestExecuteSyncAll_AppliesRemoteSnapshots(t *testing.T) {
	mirror := newFakeMirror()
	mirror.data["members"] = []byte(`[{"id":"remote"}]`)

	members := newStore(t, "members", mirror, []string{})
	payments := newStore(t, "payments", mirror, []string{}) // no remote snapshot

	result := ExecuteSyncAll(context.Background(), SyncDeps{Stores: []*syncstore.Store{members, payments}})
	if result.Succeeded != 1 {
		t.Errorf("Succeeded=%d want 1", result.Succeeded)
	}
	if string(members.Data()) != `[{"id":"remote"}]` {
		t.Errorf("members=%s want remote snapshot applied", members.Data())
	}
	if string(payments.Data()) != `[]` {
		t.Errorf("payments=%s want local value untouched", payments.Data())
	}
}

func TestExecuteSaveAll_NoStores(t *testing.T) {
	result := ExecuteSaveAll(context.Background(), SyncDeps{})
	if result.Total != 0 || result.Succeeded != 0 {
		t.Errorf("result=%+v", result)
	}
}
