// Package redis implements the match cache on top of Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/promatch/cache"
)

// RedisStore implements cache.Store using Redis. The entry TTL maps directly
// onto the Redis key TTL, so hard expiry is enforced by the server as well as
// by the expiresAt timestamp.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ cache.Store = (*RedisStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Key prefix, default "promatch:"
}

// NewRedisStore creates a new Redis match cache
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "promatch:"
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(ownerID string) string {
	return fmt.Sprintf("%smatches:%s", s.prefix, ownerID)
}

// Get returns the owner's entry, or cache.ErrMiss.
func (s *RedisStore) Get(ctx context.Context, ownerID string) (*cache.Entry, error) {
	data, err := s.client.Get(ctx, s.key(ownerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("failed to load entry from redis: %w", err)
	}

	var entry cache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	// The key TTL normally takes care of this; the timestamp check covers
	// clock drift between writer and server.
	if entry.Expired(time.Now()) {
		return nil, cache.ErrMiss
	}

	return &entry, nil
}

// Upsert replaces the owner's entry wholesale. SET is atomic per key, so no
// additional locking is needed.
func (s *RedisStore) Upsert(ctx context.Context, entry *cache.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := s.client.Set(ctx, s.key(entry.OwnerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save entry to redis: %w", err)
	}
	return nil
}

// Delete removes the owner's entry.
func (s *RedisStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.client.Del(ctx, s.key(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
