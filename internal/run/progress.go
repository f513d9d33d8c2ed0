package run

import (
	"context"
	"log/slog"
)

// LogProgressSink reports chunk progress through the structured log. It is
// the default sink; deployments with a push channel to callers replace it.
type LogProgressSink struct {
	logger *slog.Logger
}

func NewLogProgressSink(logger *slog.Logger) *LogProgressSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressSink{logger: logger}
}

func (s *LogProgressSink) Publish(ctx context.Context, p Progress) {
	s.logger.InfoContext(ctx, "run progress",
		"run_id", p.RunID,
		"completed", p.Completed,
		"total", p.Total,
	)
}
