package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "ensemble:engine_state"

// #region redis-store
// RedisStore keeps the snapshot as a single JSON string value.
// SET replaces the value atomically, so readers see either the old or the new snapshot.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(ctx context.Context, opts *redis.Options, key string) (*RedisStore, error) {
	if key == "" {
		key = DefaultRedisKey
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisStore{rdb: rdb, key: key}, nil
}

// Key returns the key holding the snapshot.
func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Load(ctx context.Context) (EngineState, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return EngineState{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return Unmarshal(data)
}

func (r *RedisStore) Save(ctx context.Context, s EngineState) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// #endregion redis-store
