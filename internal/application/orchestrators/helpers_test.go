package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"clubhouse/internal/adapters/storage/kv"
	"clubhouse/internal/application/syncstore"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newMemKV() *memKV { return &memKV{data: map[string]json.RawMessage{}} }

func (m *memKV) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeMirror struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
	fail bool
}

func newFakeMirror() *fakeMirror { return &fakeMirror{data: map[string]json.RawMessage{}} }

func (f *fakeMirror) Save(_ context.Context, collection string, data json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("backend down")
	}
	f.data[collection] = data
	return nil
}

func (f *fakeMirror) Load(_ context.Context, collection string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, false, errors.New("backend down")
	}
	v, ok := f.data[collection]
	return v, ok, nil
}

func newStore(t *testing.T, name string, mirror syncstore.Mirror, initial any) *syncstore.Store {
	t.Helper()
	s, err := syncstore.New(context.Background(), name, newMemKV(), mirror, initial)
	if err != nil {
		t.Fatalf("syncstore.New(%s): %v", name, err)
	}
	return s
}

func seedStore(t *testing.T, s *syncstore.Store, v any) {
	t.Helper()
	if err := s.SetData(context.Background(), v); err != nil {
		t.Fatalf("seed %s: %v", s.Name(), err)
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
