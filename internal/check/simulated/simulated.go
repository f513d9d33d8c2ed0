// Package simulated provides a demo checker that fabricates outcomes.
//
// THIS IS A SIMULATION. It exists so the service can be exercised end to end
// without network access, and so tests have a deterministic backend. It must
// never be wired where real number status is expected; production deployments
// replace it with an implementation of check.Checker backed by an actual
// verification provider.
package simulated

import (
	"context"
	"hash/fnv"
	"time"

	"numcheck/internal/check"
	id "numcheck/pkg/domain"
)

// Checker fabricates outcomes from a seeded hash, so the same (seed, kind,
// number) always yields the same answer. Safe for concurrent use: it holds no
// mutable state.
type Checker struct {
	kind      id.CheckKind
	seed      uint64
	latency   time.Duration
	matchRate uint64 // percentage of numbers reported as matched
	now       func() time.Time
}

// Option configures a simulated Checker.
type Option func(*Checker)

// WithLatency overrides the per-check artificial delay.
func WithLatency(d time.Duration) Option {
	return func(c *Checker) {
		c.latency = d
	}
}

// WithMatchRate overrides the percentage of numbers reported as matched.
func WithMatchRate(pct uint64) Option {
	return func(c *Checker) {
		c.matchRate = pct
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// New creates a simulated checker for the given kind. The seed pins the
// fabricated answers; two checkers with the same seed and kind agree.
func New(kind id.CheckKind, seed uint64, opts ...Option) *Checker {
	c := &Checker{
		kind:      kind,
		seed:      seed,
		latency:   500 * time.Millisecond,
		matchRate: 60,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the status dimension this checker answers.
func (c *Checker) Kind() id.CheckKind {
	return c.kind
}

// Check fabricates an outcome after the configured artificial delay.
func (c *Checker) Check(ctx context.Context, number id.CanonicalNumber) (check.Outcome, error) {
	if c.latency > 0 {
		select {
		case <-ctx.Done():
			return check.Outcome{}, check.NewError(check.ErrorTimeout, c.kind.String(), "simulation interrupted", ctx.Err())
		case <-time.After(c.latency):
		}
	}

	status := check.StatusUnmatched
	detail := "simulated negative (not a real status source)"
	if c.roll(number) < c.matchRate {
		status = check.StatusMatched
		detail = "simulated positive (not a real status source)"
	}

	return check.Outcome{
		Status:    status,
		Detail:    detail,
		CheckedAt: c.now(),
	}, nil
}

// roll derives a stable value in [0,100) from seed, kind, and number.
func (c *Checker) roll(number id.CanonicalNumber) uint64 {
	h := fnv.New64a()
	var seedBytes [8]byte
	for i := range seedBytes {
		seedBytes[i] = byte(c.seed >> (8 * i))
	}
	_, _ = h.Write(seedBytes[:])
	_, _ = h.Write([]byte(c.kind))
	_, _ = h.Write([]byte(number))
	return h.Sum64() % 100
}
