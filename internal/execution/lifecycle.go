package execution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"e2erun/internal/domain"
	"e2erun/internal/env"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
)

// ServerLifecycle starts and stops the server under test of one file and checks
// what the server left in the log while shutting down.
type ServerLifecycle struct {
	log     *failurelog.Log
	signals env.Signals
	logger  *zap.Logger
}

// NewServerLifecycle creates a new ServerLifecycle
func NewServerLifecycle(log *failurelog.Log, signals env.Signals, logger *zap.Logger) *ServerLifecycle {
	return &ServerLifecycle{log: log, signals: signals, logger: logger}
}

// StartOrFail runs the start hook of f, if any
func (s *ServerLifecycle) StartOrFail(ctx context.Context, f *harness.File) error {
	start, _ := f.ServerHooks()
	if start == nil {
		return nil
	}
	if err := callHook(ctx, start); err != nil {
		return &ServerStartError{Err: err}
	}
	return nil
}

// StopAndCheck runs the stop hook of f, if any, then inspects the log. It returns
// false with the drained entries when the shutdown produced disqualifying output.
// On platforms with noisy process teardown only a failing stop hook counts.
func (s *ServerLifecycle) StopAndCheck(ctx context.Context, f *harness.File, failOnWarning bool) ([]domain.LogEntry, bool) {
	var stopErr error
	if _, stop := f.ServerHooks(); stop != nil {
		stopErr = callHook(ctx, stop)
	}

	if s.signals.NoisyTeardown {
		if n := s.log.Len(); n > 0 {
			s.logger.Debug("Ignoring post-stop log entries", zap.String("file", f.Path()), zap.Int("entries", n))
		}
		s.log.Clear()
	}
	if stopErr != nil {
		s.log.AddText("harness", domain.SeverityError, "server stop: "+stopErr.Error())
	}
	if s.log.HasFailures(failOnWarning) {
		return s.log.Drain(), false
	}
	return nil, true
}

// callHook runs a hook, turning a panic into an error
func callHook(ctx context.Context, hook harness.HookFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hook(ctx)
}
