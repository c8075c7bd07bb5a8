//go:build integration

package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"theatreops/internal/notify"
	"theatreops/pkg/testutil/containers"
)

type RedisSuppressionsSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *notify.RedisSuppressions
}

func TestRedisSuppressionsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSuppressionsSuite))
}

func (s *RedisSuppressionsSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = notify.NewRedisSuppressions(s.redis.Client)
}

func (s *RedisSuppressionsSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSuppressionsSuite) TestOpenAndActiveBucket() {
	ctx := context.Background()

	_, open, err := s.store.ActiveBucket(ctx, "procedure|proc-1|procedure_breached")
	s.Require().NoError(err)
	s.False(open)

	s.Require().NoError(s.store.Open(ctx, "procedure|proc-1|procedure_breached", "elevated"))

	bucket, open, err := s.store.ActiveBucket(ctx, "procedure|proc-1|procedure_breached")
	s.Require().NoError(err)
	s.True(open)
	s.Equal("elevated", bucket)
}

func (s *RedisSuppressionsSuite) TestOpenOverwritesBucket() {
	ctx := context.Background()

	s.Require().NoError(s.store.Open(ctx, "inventory|inv-1|inventory_low", "routine"))
	s.Require().NoError(s.store.Open(ctx, "inventory|inv-1|inventory_low", "elevated"))

	bucket, open, err := s.store.ActiveBucket(ctx, "inventory|inv-1|inventory_low")
	s.Require().NoError(err)
	s.True(open)
	s.Equal("elevated", bucket)
}

func (s *RedisSuppressionsSuite) TestClear() {
	ctx := context.Background()

	s.Require().NoError(s.store.Open(ctx, "session|sess-1|session_near_capacity", "routine"))
	s.Require().NoError(s.store.Clear(ctx, "session|sess-1|session_near_capacity"))

	_, open, err := s.store.ActiveBucket(ctx, "session|sess-1|session_near_capacity")
	s.Require().NoError(err)
	s.False(open)

	// Clearing an absent key is not an error.
	s.Require().NoError(s.store.Clear(ctx, "session|sess-1|session_near_capacity"))
}

func (s *RedisSuppressionsSuite) TestSafetyTTLExpires() {
	ctx := context.Background()
	store := notify.NewRedisSuppressions(s.redis.Client, notify.WithSafetyTTL(time.Second))

	s.Require().NoError(store.Open(ctx, "staffing|alloc-1|staff_shortage_detected", "routine"))

	s.Require().Eventually(func() bool {
		_, open, err := store.ActiveBucket(ctx, "staffing|alloc-1|staff_shortage_detected")
		s.Require().NoError(err)
		return !open
	}, 5*time.Second, 100*time.Millisecond, "the safety TTL bounds stuck suppressions")
}
