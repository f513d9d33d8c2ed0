package audit

import (
	"context"
	"sync"
)

// Store is the append-only audit sink. Implementations must tolerate
// concurrent appends.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCaller(ctx context.Context, callerID string) ([]Event, error)
}

// MemoryStore keeps events in memory, in append order. Suited to single
// process deployments and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListByCaller(_ context.Context, callerID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.CallerID == callerID {
			out = append(out, e)
		}
	}
	return out, nil
}
