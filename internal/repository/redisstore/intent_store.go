package redisstore

import (
	"context"
	"errors"
	"time"

	"go-ideadaily-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// IntentStore keeps redirect intents in Redis under a namespaced key with a
// fixed TTL. Two instances with different prefixes and TTLs provide the
// short-lived and long-lived tiers.
type IntentStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewIntentStore(client *redis.Client, prefix string, ttl time.Duration) domain.IntentStore {
	return &IntentStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *IntentStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *IntentStore) Put(ctx context.Context, key, path string) error {
	return s.client.Set(ctx, s.key(key), path, s.ttl).Err()
}

func (s *IntentStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (s *IntentStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
