package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis is a Storage backed by a Redis server. Keys are namespaced with a
// prefix so one server can hold the sessions of many devices. Unlike a
// cache, failures are surfaced: a token that cannot be persisted must not be
// treated as a valid session.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Storage = (*Redis)(nil)

// NewRedis creates a Redis-backed storage.
func NewRedis(addr, password string, db int) *Redis {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Redis{client: redis.NewClient(opts)}
}

// WithPrefix returns a storage view whose keys are prefixed, sharing the
// underlying client.
func (r *Redis) WithPrefix(prefix string) *Redis {
	return &Redis{client: r.client, prefix: r.prefix + prefix}
}

// Get returns the value for key, or nil if the key is absent.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "get", Key: key, Err: err}
	}
	return res, nil
}

// Set stores value under key with no expiry; the session token carries its
// own lifetime.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return &Error{Op: "remove", Key: key, Err: err}
	}
	return nil
}
