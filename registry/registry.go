// Package registry implements the lock registry: a concurrent map from lock
// keys to opaque caller-supplied tokens, with insert-or-overwrite acquire,
// remove-and-return release, and whole-registry purge.
package registry

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Release when no record exists for the key.
var ErrNotFound = errors.New("lock not found")

// Lock is the record stored for a held key. Token is an opaque string chosen
// by the caller at acquisition time; the registry never inspects or compares
// it, and returns it verbatim on release.
type Lock struct {
	Token string `json:"token"`
}

// Registry defines the lock registry contract shared by all backends.
//
// Acquire and Release are atomic per key: concurrent calls on the same key
// never observe a partial read-modify-write. Purge is atomic over the whole
// registry. Calls on distinct keys carry no ordering relationship.
type Registry interface {
	// Acquire stores a record for key, unconditionally overwriting any
	// record already present. A previously stored token is discarded.
	Acquire(ctx context.Context, key, token string) error

	// Release atomically removes the record for key and returns it.
	// Returns ErrNotFound if the key holds no record.
	Release(ctx context.Context, key string) (*Lock, error)

	// Purge atomically discards every record, leaving the registry empty.
	// Purging an empty registry is a no-op.
	Purge(ctx context.Context) error

	// Len reports the number of currently held locks.
	Len(ctx context.Context) (int, error)

	// Close releases any resources held by the registry.
	Close() error
}
