package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"e2erun/internal/config"
	"e2erun/internal/domain"
	"e2erun/internal/env"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
)

// Dependencies are the collaborators of a suite run
type Dependencies struct {
	Discoverer Discoverer
	Builder    Builder
	Loader     Loader
	Launcher   BrowserLauncher
	// ServerHooks returns the default server hooks for one attempt, nil for none
	ServerHooks func() (start, stop harness.HookFunc)
	Reporter    Reporter
}

// Suite is the top-level driver of a run
type Suite struct {
	config  *config.Config
	signals env.Signals
	log     *failurelog.Log
	deps    Dependencies
	logger  *zap.Logger
}

// NewSuite creates a new Suite. log must be the log the loader writes to.
func NewSuite(cfg *config.Config, signals env.Signals, log *failurelog.Log, deps Dependencies, logger *zap.Logger) *Suite {
	if deps.Reporter == nil {
		deps.Reporter = NopReporter{}
	}
	return &Suite{config: cfg, signals: signals, log: log, deps: deps, logger: logger}
}

// Run discovers the files, runs them in one browser session and returns the
// summary. It fails with *SuiteFailure when files are still failing after all
// passes, and with *AbortError when the parallel CI circuit breaker tripped.
// The summary is valid in both cases.
func (s *Suite) Run(ctx context.Context) (domain.RunSummary, error) {
	started := time.Now()
	summary := domain.RunSummary{CI: s.signals.CI}

	files, err := s.deps.Discoverer.Discover()
	if err != nil {
		return summary, fmt.Errorf("discover test files: %w", err)
	}
	if len(files) == 0 {
		s.logger.Warn("No test files found", zap.String("path", s.config.GetTestPath()))
		return summary, nil
	}

	session, err := s.deps.Launcher.Launch(ctx)
	if err != nil {
		return summary, fmt.Errorf("launch browser: %w", err)
	}

	executor := NewFileExecutor(s.config, s.deps.Builder, s.deps.Loader, session, s.log,
		NewServerLifecycle(s.log, s.signals, s.logger), s.deps.ServerHooks, s.deps.Reporter, s.logger)
	scheduler := NewAttemptScheduler(executor, s.signals, s.deps.Reporter, s.logger)

	scheduled, runErr := scheduler.Schedule(ctx, files)

	if err := session.Close(); err != nil {
		s.logger.Warn("Failed to close browser session", zap.Error(err))
	}

	summary.Results = scheduled.Results
	summary.Failing = scheduled.Failing
	summary.Duration = time.Since(started)

	var abort *AbortError
	summary.Aborted = errors.As(runErr, &abort)
	if runErr != nil {
		return summary, runErr
	}
	if len(summary.Failing) > 0 {
		return summary, &SuiteFailure{Paths: summary.Failing}
	}
	return summary, nil
}
