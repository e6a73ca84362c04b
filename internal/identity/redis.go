package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hashClient is the subset of the redis client used by RedisStore
type hashClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore keeps the identity values of one browser session in a redis hash
type RedisStore struct {
	client    hashClient
	sessionID string
	ttl       time.Duration
}

// NewRedisStore creates a store for a session. A zero ttl keeps the hash forever.
func NewRedisStore(client hashClient, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

// Get reads a field of the session hash
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key(), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading session %s: %w", s.sessionID, err)
	}
	return v, true, nil
}

// Set writes a field of the session hash and refreshes its expiry
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.key(), key, value).Err(); err != nil {
		return fmt.Errorf("writing session %s: %w", s.sessionID, err)
	}

	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key(), s.ttl).Err(); err != nil {
			return fmt.Errorf("refreshing session %s: %w", s.sessionID, err)
		}
	}
	return nil
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("gw:session:%s", s.sessionID)
}
