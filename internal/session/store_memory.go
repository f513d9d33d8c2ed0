package session

import (
	"context"
	"sync"
	"time"

	"numcheck/pkg/platform/sentinel"
)

// InMemoryStore implements Store with process-local maps. Suitable for a
// single instance; use RedisStore when sessions must survive restarts or be
// shared across replicas.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	inflight map[string]bool
	ttl      time.Duration
	now      func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithTTL sets the inactivity window after which a session is evicted.
// Zero disables eviction.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *InMemoryStore) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[string]*Session),
		inflight: make(map[string]bool),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the caller's session, evicting it first when the inactivity TTL
// has lapsed.
func (s *InMemoryStore) Get(ctx context.Context, callerID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if s.ttl > 0 && s.now().Sub(sess.LastSeenAt) > s.ttl {
		delete(s.sessions, callerID)
		delete(s.inflight, callerID)
		return nil, sentinel.ErrNotFound
	}

	copied := *sess
	return &copied, nil
}

// Put creates or replaces the caller's session.
func (s *InMemoryStore) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	copied.LastSeenAt = s.now()
	s.sessions[sess.CallerID] = &copied
	return nil
}

// Delete removes the caller's session and run slot.
func (s *InMemoryStore) Delete(ctx context.Context, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, callerID)
	delete(s.inflight, callerID)
	return nil
}

// BeginRun acquires the caller's run slot.
func (s *InMemoryStore) BeginRun(ctx context.Context, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight[callerID] {
		return ErrRunInFlight
	}
	s.inflight[callerID] = true
	return nil
}

// EndRun releases the caller's run slot.
func (s *InMemoryStore) EndRun(ctx context.Context, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, callerID)
	return nil
}
