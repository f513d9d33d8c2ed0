package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"numcheck/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "numcheck:session:"
	runKeyPrefix     = "numcheck:run:"

	// runSlotTTL bounds how long an abandoned run slot can block a caller if
	// a process dies between BeginRun and EndRun.
	runSlotTTL = 15 * time.Minute
)

// RedisStore is a Redis-backed implementation of Store. This is the
// recommended implementation for distributed deployments where multiple
// instances serve the same callers: the run slot is acquired with SET NX so
// mutual exclusion holds across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisTTL sets the inactivity window after which Redis evicts a session.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithRedisClock overrides the time source, for tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		s.now = now
	}
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the caller's session. Expiry is delegated to Redis TTLs.
func (s *RedisStore) Get(ctx context.Context, callerID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+callerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Put creates or replaces the caller's session and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	copied := *sess
	copied.LastSeenAt = s.now()

	data, err := json.Marshal(&copied)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.CallerID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Delete removes the caller's session and run slot.
func (s *RedisStore) Delete(ctx context.Context, callerID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+callerID, runKeyPrefix+callerID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// BeginRun acquires the caller's run slot with SET NX.
func (s *RedisStore) BeginRun(ctx context.Context, callerID string) error {
	ok, err := s.client.SetNX(ctx, runKeyPrefix+callerID, "1", runSlotTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire run slot: %w", err)
	}
	if !ok {
		return ErrRunInFlight
	}
	return nil
}

// EndRun releases the caller's run slot.
func (s *RedisStore) EndRun(ctx context.Context, callerID string) error {
	if err := s.client.Del(ctx, runKeyPrefix+callerID).Err(); err != nil {
		return fmt.Errorf("release run slot: %w", err)
	}
	return nil
}
