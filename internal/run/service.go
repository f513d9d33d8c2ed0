package run

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"numcheck/internal/filter"
	"numcheck/internal/number"
	"numcheck/internal/number/ingest"
	"numcheck/internal/session"
	id "numcheck/pkg/domain"
	domainerrors "numcheck/pkg/domain-errors"
	"numcheck/pkg/platform/sentinel"
)

// Service is the application facade for batch check runs and per-caller
// configuration. It owns the session lifecycle around a run: acquire the run
// slot, execute, release, always in that order.
type Service struct {
	sessions SessionStore
	orch     *Orchestrator
	logger   *slog.Logger
	metrics  Metrics
	audit    AuditPublisher
	now      func() time.Time
	newRunID func() string
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(a AuditPublisher) ServiceOption {
	return func(s *Service) { s.audit = a }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithRunIDGenerator(gen func() string) ServiceOption {
	return func(s *Service) { s.newRunID = gen }
}

func NewService(sessions SessionStore, orch *Orchestrator, opts ...ServiceOption) *Service {
	s := &Service{
		sessions: sessions,
		orch:     orch,
		logger:   slog.Default(),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetConfig returns the caller's current configuration, creating a session
// with defaults on first contact.
func (s *Service) GetConfig(ctx context.Context, callerID string) (filter.OperationConfig, error) {
	sess, err := s.loadOrCreate(ctx, callerID)
	if err != nil {
		return filter.OperationConfig{}, err
	}
	return sess.Config, nil
}

// Configure validates and stores a new configuration for the caller. The
// configuration only applies to runs started after this call returns.
func (s *Service) Configure(ctx context.Context, callerID string, cfg filter.OperationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, kind := range cfg.EnabledKinds() {
		if _, ok := s.orch.registry.Get(kind); !ok {
			return domainerrors.New(domainerrors.CodeInvalidInput, "no checker available for kind "+kind.String())
		}
	}

	sess, err := s.loadOrCreate(ctx, callerID)
	if err != nil {
		return err
	}
	sess.Config = cfg
	sess.LastSeenAt = s.now()
	if err := s.sessions.Put(ctx, sess); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.ConfigChanged(ctx, callerID, "config_updated", cfg.Describe())
	}
	return nil
}

// ResetConfig restores the caller's configuration to the defaults.
func (s *Service) ResetConfig(ctx context.Context, callerID string) error {
	sess, err := s.loadOrCreate(ctx, callerID)
	if err != nil {
		return err
	}
	sess.Config = filter.DefaultConfig()
	sess.LastSeenAt = s.now()
	if err := s.sessions.Put(ctx, sess); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.ConfigChanged(ctx, callerID, "config_reset", sess.Config.Describe())
	}
	return nil
}

// CheckText extracts numbers from free-form text and runs the batch.
func (s *Service) CheckText(ctx context.Context, callerID, text string) (*Result, error) {
	return s.runBatch(ctx, callerID, func() ([]id.CanonicalNumber, error) {
		return number.ExtractText(text), nil
	})
}

// CheckFile extracts numbers from an uploaded file and runs the batch. The
// file format is inferred from the filename extension.
func (s *Service) CheckFile(ctx context.Context, callerID, filename string, r io.Reader) (*Result, error) {
	return s.runBatch(ctx, callerID, func() ([]id.CanonicalNumber, error) {
		return ingest.ExtractFile(r, filename)
	})
}

func (s *Service) runBatch(ctx context.Context, callerID string, extract func() ([]id.CanonicalNumber, error)) (*Result, error) {
	sess, err := s.loadOrCreate(ctx, callerID)
	if err != nil {
		return nil, err
	}
	cfg := sess.Config

	candidates, err := extract()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "no valid phone numbers found in input")
	}

	if err := s.sessions.BeginRun(ctx, callerID); err != nil {
		if errors.Is(err, session.ErrRunInFlight) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeConflict, "a check run is already in progress")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "could not acquire run slot")
	}
	defer func() {
		if endErr := s.sessions.EndRun(context.WithoutCancel(ctx), callerID); endErr != nil {
			s.logger.Error("failed to release run slot", "caller_id", callerID, "error", endErr)
		}
	}()

	numbers, truncated := s.orch.Cap(candidates)
	runID := s.newRunID()
	started := s.now()

	s.logger.Info("run started",
		"run_id", runID,
		"caller_id", callerID,
		"numbers", len(numbers),
		"truncated", truncated,
		"kinds", len(cfg.EnabledKinds()))
	if s.metrics != nil {
		s.metrics.RunStarted()
	}
	if s.audit != nil {
		s.audit.RunStarted(ctx, runID, callerID, len(candidates))
	}

	processed, partial, err := s.orch.Execute(ctx, runID, numbers, cfg)
	finished := s.now()

	if err != nil {
		s.finishRun(ctx, runID, callerID, nil, false, finished.Sub(started), err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "check run failed")
	}

	results, stats := filter.Bucket(processed, cfg)
	s.finishRun(ctx, runID, callerID, stats, partial, finished.Sub(started), nil)

	sess.LastSeenAt = finished
	if putErr := s.sessions.Put(ctx, sess); putErr != nil {
		s.logger.Warn("failed to refresh session", "caller_id", callerID, "error", putErr)
	}

	return &Result{
		RunID:      runID,
		CallerID:   callerID,
		Config:     cfg,
		Submitted:  len(candidates),
		Truncated:  truncated,
		Processed:  processed,
		Results:    results,
		Stats:      stats,
		Partial:    partial,
		StartedAt:  started,
		FinishedAt: finished,
	}, nil
}

func (s *Service) finishRun(ctx context.Context, runID, callerID string, stats *filter.Stats, partial bool, d time.Duration, err error) {
	outcome := "completed"
	switch {
	case err != nil:
		outcome = "failed"
	case partial:
		outcome = "partial"
	}

	if err != nil {
		s.logger.Error("run failed", "run_id", runID, "caller_id", callerID, "duration", d, "error", err)
	} else {
		s.logger.Info("run finished", "run_id", runID, "caller_id", callerID, "duration", d, "outcome", outcome)
	}
	if s.metrics != nil {
		s.metrics.RunCompleted(outcome, d)
	}
	if s.audit != nil {
		s.audit.RunFinished(ctx, runID, callerID, stats, partial, err)
	}
}

func (s *Service) loadOrCreate(ctx context.Context, callerID string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, callerID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "session store unavailable")
	}
	sess = session.New(callerID, s.now())
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "session store unavailable")
	}
	return sess, nil
}
