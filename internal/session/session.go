// Package session holds per-caller state: the operation configuration and the
// in-flight-run guard. The store is injected into the run service so process
// lifetime and session lifetime stay decoupled; there is no cross-caller
// shared state.
package session

import (
	"context"
	"errors"
	"time"

	"numcheck/internal/filter"
)

// ErrRunInFlight is returned by BeginRun when the caller already has a run in
// progress. A second run is rejected, not queued: two concurrent runs for one
// caller would race on the same OperationConfig and double-spend the batch cap.
var ErrRunInFlight = errors.New("a run is already in flight for this caller")

// Session captures one caller's configuration between requests.
type Session struct {
	CallerID   string
	Config     filter.OperationConfig
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// New creates a session with the documented default configuration.
func New(callerID string, now time.Time) *Session {
	return &Session{
		CallerID:   callerID,
		Config:     filter.DefaultConfig(),
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// Store is the session persistence port. Implementations must make BeginRun
// atomic per caller: of two concurrent calls exactly one succeeds.
type Store interface {
	// Get returns the caller's session or sentinel.ErrNotFound.
	Get(ctx context.Context, callerID string) (*Session, error)

	// Put creates or replaces the caller's session.
	Put(ctx context.Context, s *Session) error

	// Delete removes the caller's session. Deleting an absent session is not
	// an error.
	Delete(ctx context.Context, callerID string) error

	// BeginRun acquires the caller's run slot or fails with ErrRunInFlight.
	BeginRun(ctx context.Context, callerID string) error

	// EndRun releases the caller's run slot. Idempotent.
	EndRun(ctx context.Context, callerID string) error
}
