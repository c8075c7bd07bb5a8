package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const suppressionKeyPrefix = "supp:"

// RedisSuppressions is the Redis-backed SuppressionStore for deployments
// where several engine instances share suppression state.
type RedisSuppressions struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisSuppressionsOption func(*RedisSuppressions)

// WithSafetyTTL bounds how long a suppression can stay open if the resolving
// change is never observed. Zero means suppressions live until cleared.
func WithSafetyTTL(ttl time.Duration) RedisSuppressionsOption {
	return func(s *RedisSuppressions) {
		s.ttl = ttl
	}
}

func NewRedisSuppressions(client *redis.Client, opts ...RedisSuppressionsOption) *RedisSuppressions {
	s := &RedisSuppressions{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisSuppressions) ActiveBucket(ctx context.Context, key string) (string, bool, error) {
	bucket, err := s.client.Get(ctx, suppressionKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get suppression: %w", err)
	}
	return bucket, true, nil
}

func (s *RedisSuppressions) Open(ctx context.Context, key string, bucket string) error {
	if err := s.client.Set(ctx, suppressionKeyPrefix+key, bucket, s.ttl).Err(); err != nil {
		return fmt.Errorf("open suppression: %w", err)
	}
	return nil
}

func (s *RedisSuppressions) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, suppressionKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear suppression: %w", err)
	}
	return nil
}
