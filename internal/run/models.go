package run

import (
	"time"

	"numcheck/internal/filter"
	id "numcheck/pkg/domain"
)

// Result is the complete outcome of one batch check run. It is built in
// memory, handed to the report layer, and discarded; nothing in it is
// persisted.
type Result struct {
	RunID    string
	CallerID string

	// Config is the configuration snapshot the run executed under. Later
	// configuration changes never affect an already-produced result.
	Config filter.OperationConfig

	// Submitted is how many candidates survived extraction, before the
	// batch cap was applied.
	Submitted int

	// Truncated is how many candidates were dropped by the batch cap.
	Truncated int

	// Processed holds per-number outcomes in submission order.
	Processed []filter.NumberOutcomes

	Results *filter.ResultSet
	Stats   *filter.Stats

	// Partial is set when a systemic backend failure aborted the run
	// mid-way and the configuration asked to salvage completed chunks.
	Partial bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall-clock time the run took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Numbers returns the canonical numbers that were actually processed, in
// submission order.
func (r *Result) Numbers() []id.CanonicalNumber {
	nums := make([]id.CanonicalNumber, 0, len(r.Processed))
	for _, no := range r.Processed {
		nums = append(nums, no.Number)
	}
	return nums
}

// Progress is a point-in-time snapshot of a running batch, published after
// every committed chunk so a caller can render "42/120 checked".
type Progress struct {
	RunID     string
	Completed int
	Total     int

	// Buckets holds interim bucket counts over the chunks committed so far.
	Buckets map[string]int
}
