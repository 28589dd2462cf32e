package registry

import (
	"context"
	"hash/fnv"
	"sync"
)

// DefaultShardCount is the shard count used when the configured value is
// zero or negative.
const DefaultShardCount = 32

// ShardedRegistry stripes keys across independently locked shards so that
// operations on distinct keys rarely contend. Purge takes every shard lock
// before clearing any shard, so no caller can observe a partially cleared
// registry.
type ShardedRegistry struct {
	shards []*shard
}

type shard struct {
	mu    sync.RWMutex
	locks map[string]Lock
}

// NewShardedRegistry creates a sharded registry with the given shard count.
func NewShardedRegistry(shardCount int) *ShardedRegistry {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{locks: make(map[string]Lock)}
	}
	return &ShardedRegistry{shards: shards}
}

func (r *ShardedRegistry) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

// Acquire stores a record for key, overwriting any existing record.
func (r *ShardedRegistry) Acquire(ctx context.Context, key, token string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s := r.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[key] = Lock{Token: token}
	return nil
}

// Release removes and returns the record for key.
func (r *ShardedRegistry) Release(ctx context.Context, key string) (*Lock, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s := r.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.locks[key]
	if !exists {
		return nil, ErrNotFound
	}
	delete(s.locks, key)
	return &lock, nil
}

// Purge discards every record. All shard locks are held for the duration of
// the clear.
func (r *ShardedRegistry) Purge(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for _, s := range r.shards {
		s.mu.Lock()
	}
	for _, s := range r.shards {
		s.locks = make(map[string]Lock)
		s.mu.Unlock()
	}
	return nil
}

// Len reports the number of held locks across all shards.
func (r *ShardedRegistry) Len(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.locks)
		s.mu.RUnlock()
	}
	return total, nil
}

// Close clears all shards.
func (r *ShardedRegistry) Close() error {
	for _, s := range r.shards {
		s.mu.Lock()
		s.locks = make(map[string]Lock)
		s.mu.Unlock()
	}
	return nil
}
