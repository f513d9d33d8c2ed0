// Package check defines the port through which number status checks are
// performed. The embedding application supplies real implementations; the core
// only depends on the interfaces here.
package check

import (
	"context"
	"fmt"
	"time"

	id "numcheck/pkg/domain"
)

//go:generate mockgen -source=check.go -destination=mocks/mocks.go -package=mocks Checker

// Status is the tri-state result of a single check. Keeping undetermined
// separate from unmatched matters downstream: a report must never present
// "could not determine" as "not reachable".
type Status string

const (
	StatusMatched      Status = "matched"
	StatusUnmatched    Status = "unmatched"
	StatusUndetermined Status = "undetermined"
)

// Determined reports whether the check produced an actual answer.
func (s Status) Determined() bool {
	return s == StatusMatched || s == StatusUnmatched
}

// Outcome is the immutable result of one (number, kind) check. Produced once
// per run, held only for the duration of the run.
type Outcome struct {
	Status Status

	// Detail is a human-readable note for the report, e.g. why a check came
	// back undetermined.
	Detail string

	// RetryAfter hints when the check is worth repeating. Zero means no hint.
	RetryAfter time.Duration

	CheckedAt time.Time
}

// Undetermined builds the degraded outcome used when a checker fails for a
// single number. The batch continues; only this pair is affected.
func Undetermined(detail string, checkedAt time.Time) Outcome {
	return Outcome{
		Status:    StatusUndetermined,
		Detail:    detail,
		CheckedAt: checkedAt,
	}
}

// Checker is the universal interface all check backends must implement. It is
// the seam where a real verification backend plugs in.
//
// Implementations must be safe for concurrent use across distinct numbers and
// should honor ctx cancellation; latency in the hundreds of milliseconds is
// expected and bounded by the caller.
type Checker interface {
	// Kind returns the status dimension this checker answers.
	Kind() id.CheckKind

	// Check performs one status check for one number.
	Check(ctx context.Context, number id.CanonicalNumber) (Outcome, error)
}

// Registry maintains checkers keyed by kind.
type Registry struct {
	checkers map[id.CheckKind]Checker
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[id.CheckKind]Checker)}
}

// Register adds a checker for its kind.
func (r *Registry) Register(c Checker) error {
	kind := c.Kind()
	if _, exists := r.checkers[kind]; exists {
		return fmt.Errorf("checker for kind %s already registered", kind)
	}
	r.checkers[kind] = c
	return nil
}

// Get retrieves the checker for a kind.
func (r *Registry) Get(kind id.CheckKind) (Checker, bool) {
	c, ok := r.checkers[kind]
	return c, ok
}

// Kinds returns the registered kinds in the domain's stable order.
func (r *Registry) Kinds() []id.CheckKind {
	var kinds []id.CheckKind
	for _, k := range id.AllCheckKinds() {
		if _, ok := r.checkers[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
