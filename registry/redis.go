package registry

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// releaseScript atomically reads and deletes a lock key. Returning the value
// from the same script keeps remove-and-return a single step even with
// multiple lockd instances sharing one Redis.
const releaseScript = `
	local v = redis.call("get", KEYS[1])
	if v == false then
		return false
	end
	redis.call("del", KEYS[1])
	return v
`

// RedisRegistry keeps lock records in Redis under a common key prefix.
// Intended for deployments that want the registry to outlive a single
// process; the default in-process backends cover the single-node case.
type RedisRegistry struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisRegistry creates a Redis-backed registry and verifies connectivity.
func NewRedisRegistry(addr, password string, db int, prefix string, logger *zap.Logger) (*RedisRegistry, error) {
	if prefix == "" {
		prefix = "lockd:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRegistry{client: client, prefix: prefix, logger: logger}, nil
}

func (r *RedisRegistry) lockKey(key string) string {
	return r.prefix + key
}

// Acquire stores a record for key, overwriting any existing record. No TTL:
// records live until released or purged.
func (r *RedisRegistry) Acquire(ctx context.Context, key, token string) error {
	if err := r.client.Set(ctx, r.lockKey(key), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to acquire lock for key %s: %w", key, err)
	}
	r.logger.Debug("Lock acquired", zap.String("key", key))
	return nil
}

// Release removes and returns the record for key.
func (r *RedisRegistry) Release(ctx context.Context, key string) (*Lock, error) {
	result, err := r.client.Eval(ctx, releaseScript, []string{r.lockKey(key)}).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to release lock for key %s: %w", key, err)
	}

	token, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected release reply type %T for key %s", result, key)
	}

	r.logger.Debug("Lock released", zap.String("key", key))
	return &Lock{Token: token}, nil
}

// Purge deletes every record under the registry prefix.
func (r *RedisRegistry) Purge(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()

	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to purge locks: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan locks for purge: %w", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to purge locks: %w", err)
		}
	}

	r.logger.Debug("Registry purged")
	return nil
}

// Len counts the records under the registry prefix.
func (r *RedisRegistry) Len(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count locks: %w", err)
	}
	return count, nil
}

// Close closes the Redis client connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
