package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numcheck/internal/filter"
)

func fixedClock() func() time.Time {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func drain(t *testing.T, store *MemoryStore, callerID string, want int) []Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		events, err := store.ListByCaller(context.Background(), callerID)
		require.NoError(t, err)
		if len(events) >= want {
			return events
		}
		select {
		case <-deadline:
			t.Fatalf("expected %d events, got %d", want, len(events))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPublisherAndWorkerRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inbox := make(chan Event, 16)
	store := NewMemoryStore()
	go NewWorker(store, inbox, nil).Run(ctx)

	pub := NewPublisher(inbox, WithClock(fixedClock()))
	pub.RunStarted(ctx, "run-1", "caller-1", 25)
	pub.RunFinished(ctx, "run-1", "caller-1", &filter.Stats{Total: 25, Buckets: map[string]int{"x": 25}}, false, nil)

	events := drain(t, store, "caller-1", 2)
	assert.Equal(t, ActionRunStarted, events[0].Action)
	assert.Equal(t, 25, events[0].Numbers)
	assert.Equal(t, fixedClock()(), events[0].Timestamp)

	assert.Equal(t, ActionRunFinished, events[1].Action)
	assert.Equal(t, "completed", events[1].Outcome)
	assert.Equal(t, "25 numbers across 1 buckets", events[1].Detail)
}

func TestRunFinishedOutcomes(t *testing.T) {
	ctx := context.Background()
	inbox := make(chan Event, 4)
	pub := NewPublisher(inbox, WithClock(fixedClock()))

	pub.RunFinished(ctx, "run-f", "c", nil, false, errors.New("backend down"))
	pub.RunFinished(ctx, "run-p", "c", &filter.Stats{Total: 5, Buckets: map[string]int{}}, true, nil)

	failed := <-inbox
	assert.Equal(t, "failed", failed.Outcome)
	assert.Equal(t, "backend down", failed.Detail)

	partial := <-inbox
	assert.Equal(t, "partial", partial.Outcome)
	assert.Equal(t, 5, partial.Numbers)
}

func TestEmitDropsWhenInboxFull(t *testing.T) {
	inbox := make(chan Event, 1)
	pub := NewPublisher(inbox, WithClock(fixedClock()))

	pub.RunStarted(context.Background(), "run-1", "c", 1)
	pub.RunStarted(context.Background(), "run-2", "c", 1) // dropped, must not block

	first := <-inbox
	assert.Equal(t, "run-1", first.RunID)
	select {
	case e := <-inbox:
		t.Fatalf("unexpected second event: %+v", e)
	default:
	}
}

func TestMemoryStoreFiltersByCaller(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Append(ctx, Event{CallerID: "a", Action: ActionConfigUpdated}))
	require.NoError(t, store.Append(ctx, Event{CallerID: "b", Action: ActionConfigReset}))
	require.NoError(t, store.Append(ctx, Event{CallerID: "a", Action: ActionRunStarted}))

	events, err := store.ListByCaller(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionConfigUpdated, events[0].Action)
	assert.Equal(t, ActionRunStarted, events[1].Action)
}
