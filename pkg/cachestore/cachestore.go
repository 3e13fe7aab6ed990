package cachestore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when no record exists for a key.
var ErrNotFound = errors.New("cachestore: key not found")

// Store is a durable key -> serialized-record store. Implementations hold at
// most one record per key; Set overwrites, last write wins. Implementations
// are responsible for their own internal consistency under concurrent access.
type Store interface {
	// Get retrieves the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the record under key, replacing any previous record.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the record stored under key, if any.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the store.
	Close() error
}
