package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the cross-run identity marks: a listing emitted in a
// recent run is skipped instead of re-fetched.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewRedisStoreFromClient wraps an existing client, mainly for tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MarkSaved records an emitted identity key with a TTL.
func (s *RedisStore) MarkSaved(ctx context.Context, identityKey string, ttl time.Duration) error {
	return s.client.Set(ctx, savedKey(identityKey), "1", ttl).Err()
}

// WasSaved reports whether the identity key was emitted within the TTL
// window of a previous run.
func (s *RedisStore) WasSaved(ctx context.Context, identityKey string) (bool, error) {
	n, err := s.client.Exists(ctx, savedKey(identityKey)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func savedKey(identityKey string) string {
	return fmt.Sprintf("saved:%s", identityKey)
}
