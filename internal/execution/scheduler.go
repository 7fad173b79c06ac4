package execution

import (
	"context"

	"go.uber.org/zap"

	"e2erun/internal/domain"
	"e2erun/internal/env"
)

// ScheduleResult is what the scheduler produced, also when it stopped early
type ScheduleResult struct {
	// Failing lists the files still failing, in discovery order
	Failing []string
	// Results holds every attempt in execution order
	Results []domain.FileResult
}

// AttemptScheduler applies the two-pass retry policy to a file set
type AttemptScheduler struct {
	runner   FileRunner
	signals  env.Signals
	reporter Reporter
	logger   *zap.Logger
}

// NewAttemptScheduler creates a new AttemptScheduler
func NewAttemptScheduler(runner FileRunner, signals env.Signals, reporter Reporter, logger *zap.Logger) *AttemptScheduler {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &AttemptScheduler{runner: runner, signals: signals, reporter: reporter, logger: logger}
}

// Schedule runs every file once, then, in CI, re-runs the failures as the final
// attempt. In parallel CI a final failure stops scheduling with *AbortError.
func (s *AttemptScheduler) Schedule(ctx context.Context, files []string) (*ScheduleResult, error) {
	out := &ScheduleResult{}

	failing, err := s.pass(ctx, files, Attempt{Pass: 1}, out)
	if err != nil || len(failing) == 0 || !s.signals.CI {
		out.Failing = failing
		return out, err
	}

	s.logger.Info("Retrying failed files", zap.Int("files", len(failing)))
	failing, err = s.pass(ctx, failing, Attempt{Pass: 2, Final: true}, out)
	out.Failing = failing
	return out, err
}

// pass executes files in order and returns the ones that failed
func (s *AttemptScheduler) pass(ctx context.Context, files []string, attempt Attempt, out *ScheduleResult) ([]string, error) {
	s.reporter.PassStarted(attempt.Pass, files)

	var failing []string
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return failing, err
		}

		result, err := s.runner.Execute(ctx, path, attempt)
		if err != nil {
			return append(failing, path), err
		}
		out.Results = append(out.Results, result)
		if !result.Failed() {
			continue
		}

		failing = append(failing, path)
		if result.Final && s.signals.ParallelCI {
			return failing, &AbortError{Path: path, Pass: attempt.Pass}
		}
	}
	return failing, nil
}
