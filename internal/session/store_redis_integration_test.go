//go:build integration

package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"numcheck/internal/filter"
	"numcheck/internal/session"
	id "numcheck/pkg/domain"
	"numcheck/pkg/platform/sentinel"
	"numcheck/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestSessionRoundTrip() {
	ctx := context.Background()

	sess := session.New("caller-1", time.Now())
	sess.Config.Combo = true
	sess.Config.Kinds[id.CheckKindReceive] = filter.KindConfig{Enabled: true, Polarity: filter.PolarityFalseOnly}
	s.Require().NoError(s.store.Put(ctx, sess))

	found, err := s.store.Get(ctx, "caller-1")
	s.Require().NoError(err)
	s.True(found.Config.Combo)
	s.Equal(filter.PolarityFalseOnly, found.Config.Kinds[id.CheckKindReceive].Polarity)

	s.Require().NoError(s.store.Delete(ctx, "caller-1"))
	_, err = s.store.Get(ctx, "caller-1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestMissingSessionReturnsNotFound() {
	_, err := s.store.Get(context.Background(), "nope")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestRunSlotAtomicity verifies that SET NX admits exactly one of many
// concurrent BeginRun attempts for the same caller.
func (s *RedisStoreSuite) TestRunSlotAtomicity() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var admitted atomic.Int32
	var rejected atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.BeginRun(ctx, "contended")
			switch {
			case err == nil:
				admitted.Add(1)
			case err == session.ErrRunInFlight:
				rejected.Add(1)
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), admitted.Load())
	s.Equal(int32(goroutines-1), rejected.Load())

	s.Require().NoError(s.store.EndRun(ctx, "contended"))
	s.Require().NoError(s.store.BeginRun(ctx, "contended"))
}

func (s *RedisStoreSuite) TestDistinctCallersDoNotContend() {
	ctx := context.Background()
	s.Require().NoError(s.store.BeginRun(ctx, "caller-a"))
	s.Require().NoError(s.store.BeginRun(ctx, "caller-b"))
}
