package kv

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Store persists one JSON document per key. Writes are synchronous: when
// Set returns nil the value is durable.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
}
