package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"numcheck/internal/check"
	"numcheck/internal/filter"
	id "numcheck/pkg/domain"
)

const (
	defaultChunkSize   = 10
	defaultChunkPacing = 100 * time.Millisecond
	defaultCallTimeout = 5 * time.Second
	defaultMaxNumbers  = 1000
)

// Orchestrator fans a batch of numbers out across the registered checkers.
// Numbers are processed in fixed-size chunks: every (number, enabled kind)
// pair inside a chunk runs concurrently, chunks run sequentially with a
// pacing delay between them so backends see a bounded request rate.
type Orchestrator struct {
	registry *check.Registry
	logger   *slog.Logger
	metrics  Metrics
	progress ProgressSink

	chunkSize   int
	pacing      time.Duration
	callTimeout time.Duration
	maxNumbers  int
	now         func() time.Time
}

type OrchestratorOption func(*Orchestrator)

func WithOrchestratorLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

func WithOrchestratorMetrics(m Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithProgressSink(s ProgressSink) OrchestratorOption {
	return func(o *Orchestrator) { o.progress = s }
}

func WithChunkSize(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

func WithChunkPacing(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.pacing = d
		}
	}
}

func WithCallTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

func WithMaxNumbers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxNumbers = n
		}
	}
}

func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(registry *check.Registry, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:    registry,
		logger:      slog.Default(),
		chunkSize:   defaultChunkSize,
		pacing:      defaultChunkPacing,
		callTimeout: defaultCallTimeout,
		maxNumbers:  defaultMaxNumbers,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// systemicError marks a chunk failure that makes continuing pointless: the
// backend is rejecting our credentials or is down, so every remaining call
// would fail the same way.
type systemicError struct {
	category check.ErrorCategory
	err      error
}

func (e *systemicError) Error() string {
	return fmt.Sprintf("systemic checker failure (%s): %v", e.category, e.err)
}

func (e *systemicError) Unwrap() error { return e.err }

func isSystemic(err error) bool {
	switch check.CategoryOf(err) {
	case check.ErrorAuthentication, check.ErrorBackendOutage:
		return true
	}
	return false
}

// Cap applies the batch size limit, returning the numbers to process and how
// many were dropped.
func (o *Orchestrator) Cap(numbers []id.CanonicalNumber) ([]id.CanonicalNumber, int) {
	if len(numbers) <= o.maxNumbers {
		return numbers, 0
	}
	return numbers[:o.maxNumbers], len(numbers) - o.maxNumbers
}

// Execute runs every enabled check kind against every number. It returns
// per-number outcomes in input order.
//
// A failure on a single (number, kind) pair degrades that pair to an
// undetermined outcome and the batch keeps going. A systemic failure
// (authentication, backend outage) aborts the run: completed chunks are
// returned with partial=true when cfg asks to salvage them, otherwise the
// error is returned and all outcomes are discarded.
func (o *Orchestrator) Execute(ctx context.Context, runID string, numbers []id.CanonicalNumber, cfg filter.OperationConfig) (processed []filter.NumberOutcomes, partial bool, err error) {
	kinds := cfg.EnabledKinds()
	checkers := make(map[id.CheckKind]check.Checker, len(kinds))
	for _, kind := range kinds {
		c, ok := o.registry.Get(kind)
		if !ok {
			return nil, false, fmt.Errorf("no checker registered for kind %s", kind)
		}
		checkers[kind] = c
	}

	total := len(numbers)
	committed := make([]filter.NumberOutcomes, 0, total)

	for start := 0; start < total; start += o.chunkSize {
		end := start + o.chunkSize
		if end > total {
			end = total
		}
		chunk := numbers[start:end]

		outcomes, chunkErr := o.executeChunk(ctx, chunk, kinds, checkers)
		if chunkErr != nil {
			if cfg.SalvagePartial && len(committed) > 0 && !isContextErr(chunkErr) {
				o.logger.Warn("aborting run, salvaging completed chunks",
					"run_id", runID,
					"completed", len(committed),
					"total", total,
					"error", chunkErr)
				return committed, true, nil
			}
			return nil, false, chunkErr
		}

		committed = append(committed, outcomes...)

		if o.progress != nil {
			_, interim := filter.Bucket(committed, cfg)
			o.progress.Publish(ctx, Progress{
				RunID:     runID,
				Completed: len(committed),
				Total:     total,
				Buckets:   interim.Buckets,
			})
		}

		if end < total && o.pacing > 0 {
			select {
			case <-time.After(o.pacing):
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
	}

	return committed, false, nil
}

// executeChunk runs all (number, kind) pairs of one chunk concurrently. All
// pairs either complete (possibly degraded to undetermined) or the whole
// chunk fails with the first systemic error.
func (o *Orchestrator) executeChunk(ctx context.Context, chunk []id.CanonicalNumber, kinds []id.CheckKind, checkers map[id.CheckKind]check.Checker) ([]filter.NumberOutcomes, error) {
	outcomes := make([]filter.NumberOutcomes, len(chunk))
	for i, n := range chunk {
		outcomes[i] = filter.NumberOutcomes{
			Number:   n,
			Outcomes: make(map[id.CheckKind]check.Outcome, len(kinds)),
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for i := range chunk {
		for _, kind := range kinds {
			i, kind := i, kind
			g.Go(func() error {
				out, err := o.checkOne(gctx, checkers[kind], chunk[i])
				if err != nil {
					return err
				}
				mu.Lock()
				outcomes[i].Outcomes[kind] = out
				mu.Unlock()
				o.observe(kind, out.Status)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// checkOne performs a bounded check call. A retryable failure (timeout, rate
// limit) gets one immediate second attempt; anything still failing after that
// degrades to an undetermined outcome unless it is systemic.
func (o *Orchestrator) checkOne(ctx context.Context, c check.Checker, number id.CanonicalNumber) (check.Outcome, error) {
	out, err := o.call(ctx, c, number)
	if err == nil {
		return out, nil
	}
	if check.IsRetryable(err) && !isSystemic(err) && ctx.Err() == nil {
		o.logger.Debug("retrying check",
			"kind", c.Kind().String(),
			"category", string(check.CategoryOf(err)))
		out, err = o.call(ctx, c, number)
		if err == nil {
			return out, nil
		}
	}
	if isSystemic(err) {
		return check.Outcome{}, &systemicError{category: check.CategoryOf(err), err: err}
	}
	if isContextErr(err) && ctx.Err() != nil {
		// The run itself was cancelled, not just this call.
		return check.Outcome{}, err
	}

	o.logger.Warn("check degraded to undetermined",
		"kind", c.Kind().String(),
		"category", string(check.CategoryOf(err)),
		"error", err)
	return check.Undetermined(degradeDetail(err), o.now()), nil
}

// call runs one checker invocation under the per-call timeout.
func (o *Orchestrator) call(ctx context.Context, c check.Checker, number id.CanonicalNumber) (check.Outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return c.Check(callCtx, number)
}

func (o *Orchestrator) observe(kind id.CheckKind, status check.Status) {
	if o.metrics != nil {
		o.metrics.CheckObserved(kind.String(), string(status))
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func degradeDetail(err error) string {
	switch check.CategoryOf(err) {
	case check.ErrorTimeout:
		return "check timed out"
	case check.ErrorRateLimited:
		return "backend rate limited the check"
	case check.ErrorBadData:
		return "backend returned unusable data"
	default:
		return "check failed"
	}
}
