package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"numcheck/internal/filter"
)

// Publisher turns run lifecycle calls into audit events and hands them to a
// worker over a buffered channel. Emission never blocks the run: when the
// inbox is full the event is dropped with a warning, the run is worth more
// than its audit trail.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
	now    func() time.Time
}

type PublisherOption func(*Publisher)

func WithLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) { p.now = now }
}

func NewPublisher(inbox chan<- Event, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		inbox:  inbox,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) RunStarted(_ context.Context, runID, callerID string, submitted int) {
	p.emit(Event{
		RunID:    runID,
		CallerID: callerID,
		Action:   ActionRunStarted,
		Numbers:  submitted,
	})
}

func (p *Publisher) RunFinished(_ context.Context, runID, callerID string, stats *filter.Stats, partial bool, err error) {
	e := Event{
		RunID:    runID,
		CallerID: callerID,
		Action:   ActionRunFinished,
		Outcome:  "completed",
	}
	switch {
	case err != nil:
		e.Outcome = "failed"
		e.Detail = err.Error()
	case partial:
		e.Outcome = "partial"
	}
	if stats != nil {
		e.Numbers = stats.Total
		e.Detail = describeStats(stats)
	}
	p.emit(e)
}

// ConfigChanged records a configuration update or reset.
func (p *Publisher) ConfigChanged(_ context.Context, callerID, action, description string) {
	p.emit(Event{
		CallerID: callerID,
		Action:   action,
		Detail:   description,
	})
}

func (p *Publisher) emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = p.now()
	}
	select {
	case p.inbox <- e:
	default:
		p.logger.Warn("audit inbox full, event dropped",
			"action", e.Action, "run_id", e.RunID, "caller_id", e.CallerID)
	}
}

func describeStats(stats *filter.Stats) string {
	return fmt.Sprintf("%d numbers across %d buckets", stats.Total, len(stats.Buckets))
}
