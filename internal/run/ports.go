package run

import (
	"context"
	"time"

	"numcheck/internal/filter"
	"numcheck/internal/session"
)

// SessionStore is the slice of the session store this package needs.
type SessionStore interface {
	Get(ctx context.Context, callerID string) (*session.Session, error)
	Put(ctx context.Context, sess *session.Session) error
	BeginRun(ctx context.Context, callerID string) error
	EndRun(ctx context.Context, callerID string) error
}

// ProgressSink receives per-chunk progress updates. Publish must not block
// the run; slow consumers should drop updates rather than stall checks.
type ProgressSink interface {
	Publish(ctx context.Context, p Progress)
}

// AuditPublisher records run and configuration lifecycle events for
// after-the-fact review.
type AuditPublisher interface {
	RunStarted(ctx context.Context, runID, callerID string, submitted int)
	RunFinished(ctx context.Context, runID, callerID string, stats *filter.Stats, partial bool, err error)
	ConfigChanged(ctx context.Context, callerID, action, description string)
}

// Metrics is the instrumentation surface the run service reports into.
// Implementations must tolerate being called from multiple goroutines.
type Metrics interface {
	RunStarted()
	RunCompleted(outcome string, d time.Duration)
	CheckObserved(kind, status string)
}
