package registry

import (
	"context"
	"sync"
)

// MutexRegistry guards a plain map with a single mutex. Simplest backend;
// all keys contend on one lock, which is fine for modest request rates.
type MutexRegistry struct {
	mu    sync.RWMutex
	locks map[string]Lock
}

// NewMutexRegistry creates an empty mutex-guarded registry.
func NewMutexRegistry() *MutexRegistry {
	return &MutexRegistry{
		locks: make(map[string]Lock),
	}
}

// Acquire stores a record for key, overwriting any existing record.
func (r *MutexRegistry) Acquire(ctx context.Context, key, token string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[key] = Lock{Token: token}
	return nil
}

// Release removes and returns the record for key.
func (r *MutexRegistry) Release(ctx context.Context, key string) (*Lock, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lock, exists := r.locks[key]
	if !exists {
		return nil, ErrNotFound
	}
	delete(r.locks, key)
	return &lock, nil
}

// Purge discards every record.
func (r *MutexRegistry) Purge(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = make(map[string]Lock)
	return nil
}

// Len reports the number of held locks.
func (r *MutexRegistry) Len(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locks), nil
}

// Close clears the registry.
func (r *MutexRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = make(map[string]Lock)
	return nil
}
