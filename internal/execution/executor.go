// Package execution runs e2e test files: one file at a time, one case at a time,
// with a two-pass retry policy and failure detection from captured log output.
package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"e2erun/internal/config"
	"e2erun/internal/domain"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
)

// Attempt identifies one execution of a file
type Attempt struct {
	Pass int
	// Final marks the last pass; non-flaky files are final on any pass
	Final bool
}

// FileExecutor builds, loads and runs all cases of one test file
type FileExecutor struct {
	config   *config.Config
	builder  Builder
	loader   Loader
	session  BrowserSession
	log      *failurelog.Log
	cases    *CaseExecutor
	server   *ServerLifecycle
	hooks    func() (start, stop harness.HookFunc)
	reporter Reporter
	logger   *zap.Logger
}

// NewFileExecutor creates a FileExecutor. hooks supplies the configured default
// server hooks for each attempt and may be nil.
func NewFileExecutor(
	cfg *config.Config,
	builder Builder,
	loader Loader,
	session BrowserSession,
	log *failurelog.Log,
	server *ServerLifecycle,
	hooks func() (start, stop harness.HookFunc),
	reporter Reporter,
	logger *zap.Logger,
) *FileExecutor {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &FileExecutor{
		config:   cfg,
		builder:  builder,
		loader:   loader,
		session:  session,
		log:      log,
		cases:    NewCaseExecutor(logger),
		server:   server,
		hooks:    hooks,
		reporter: reporter,
		logger:   logger,
	}
}

// Execute runs one attempt of the file at path. File-level failures are reported
// in the result; only *harness.UsageError and *harness.InvariantViolation are
// returned as errors.
func (e *FileExecutor) Execute(ctx context.Context, path string, attempt Attempt) (result domain.FileResult, err error) {
	started := time.Now()
	result = domain.FileResult{Path: path, Pass: attempt.Pass, Final: true, Outcome: domain.Pass}

	e.log.Clear()
	e.reporter.FileStarted(path, attempt)
	defer func() {
		e.log.Clear()
		result.Duration = time.Since(started)
		if err == nil {
			e.reporter.FileFinished(result)
		}
	}()

	f, err := e.load(ctx, path, &result)
	if err != nil || f == nil {
		return result, err
	}

	state, err := f.State()
	if err != nil {
		return result, err
	}
	if state == harness.StateSkipped {
		result.Skipped = true
		result.SkipReason = f.SkipReason()
		e.logger.Debug("Skipping file", zap.String("file", path), zap.String("reason", result.SkipReason))
		return result, nil
	}

	decl := f.Declaration()
	if decl == nil {
		return result, &harness.InvariantViolation{Msg: "running file " + path + " has no run declaration"}
	}
	result.Final = attempt.Final || !decl.Flaky
	failOnWarning := !decl.AllowWarnings
	timeout := decl.CaseTimeout
	if timeout == 0 {
		timeout = e.config.CaseTimeout
	}

	return e.run(ctx, f, failOnWarning, timeout, result)
}

// load builds the file and runs its Setup against a fresh File. A nil File with
// a nil error means the attempt already failed and result says why.
func (e *FileExecutor) load(ctx context.Context, path string, result *domain.FileResult) (*harness.File, error) {
	artifact, err := e.builder.Build(ctx, path)
	defer func() {
		if derr := artifact.Dispose(); derr != nil {
			e.logger.Warn("Failed to dispose build artifact", zap.String("file", path), zap.Error(derr))
		}
	}()
	if err != nil {
		fail(result, domain.FailureBuild, err, e.log.Drain())
		return nil, nil
	}

	f := harness.NewFile(path, artifact.ID, e.config.Server.URL)
	var start, stop harness.HookFunc
	if e.hooks != nil {
		start, stop = e.hooks()
	}
	f.SetDefaults(start, stop, func(format string, args ...any) {
		e.log.AddText("test", domain.SeverityInfo, fmt.Sprintf(format, args...))
	})

	if err := e.loader.Load(ctx, artifact.BuiltPath, f); err != nil {
		var usage *harness.UsageError
		if errors.As(err, &usage) {
			return nil, usage
		}
		fail(result, domain.FailureLoad, err, e.log.Drain())
		return nil, nil
	}
	return f, nil
}

// run drives a running file: page, server start, cases, server stop, page close
func (e *FileExecutor) run(ctx context.Context, f *harness.File, failOnWarning bool, timeout time.Duration, result domain.FileResult) (domain.FileResult, error) {
	page, err := e.session.NewPage(ctx, e.log)
	if err != nil {
		fail(&result, domain.FailurePage, err, e.log.Drain())
		return result, nil
	}
	if err := f.AttachPage(page); err != nil {
		_ = page.Close()
		return result, err
	}

	if err := e.server.StartOrFail(ctx, f); err != nil {
		fail(&result, domain.FailureServerStart, err, e.log.Drain())
	} else if e.log.HasFailures(failOnWarning) {
		entries := e.log.Drain()
		fail(&result, domain.FailureServerStart, &LogDetectedFailure{Stage: "server start", Entries: entries}, entries)
	} else {
		e.log.Clear()
		e.runCases(ctx, f, failOnWarning, timeout, &result)
	}

	// Teardown runs even when the suite is being cancelled
	stopCtx := context.WithoutCancel(ctx)
	if entries, ok := e.server.StopAndCheck(stopCtx, f, failOnWarning); !ok {
		if result.Failed() {
			result.Entries = append(result.Entries, entries...)
		} else {
			fail(&result, domain.FailurePostStop, &LogDetectedFailure{Stage: "server stop", Entries: entries}, entries)
		}
	}
	if err := page.Close(); err != nil {
		e.logger.Warn("Failed to close page", zap.String("file", f.Path()), zap.Error(err))
	}

	if result.Failed() {
		e.logger.Debug("File failed",
			zap.String("file", f.Path()),
			zap.Int("pass", result.Pass),
			zap.Bool("final", result.Final),
			zap.String("kind", string(result.Kind)),
			zap.String("reason", result.Reason))
	}
	return result, nil
}

// runCases runs the cases in registration order and stops at the first failure
func (e *FileExecutor) runCases(ctx context.Context, f *harness.File, failOnWarning bool, timeout time.Duration, result *domain.FileResult) {
	afterEach := f.AfterEachHook()

	for _, c := range f.Cases() {
		if ctx.Err() != nil {
			fail(result, domain.FailureCaseThrew, fmt.Errorf("cancelled before case %q: %w", c.Description, ctx.Err()), nil)
			return
		}

		e.log.AddText("harness", domain.SeverityInfo, "case: "+c.Description)
		started := time.Now()

		err := e.cases.Run(ctx, c.Description, c.Body, timeout)
		if afterEach != nil {
			failed := err != nil
			herr := e.cases.Run(ctx, c.Description+" (after each)", func(ctx context.Context) error {
				return afterEach(ctx, failed)
			}, timeout)
			if err == nil {
				err = herr
			}
		}
		if err == nil && e.log.HasFailures(failOnWarning) {
			err = &LogDetectedFailure{Stage: fmt.Sprintf("case %q", c.Description)}
		}

		cr := domain.CaseResult{Description: c.Description, Passed: err == nil, Duration: time.Since(started)}
		if err != nil {
			cr.Kind = caseFailureKind(err)
			cr.Reason = err.Error()
			cr.Entries = e.log.Drain()
			if ld, ok := err.(*LogDetectedFailure); ok {
				ld.Entries = cr.Entries
				cr.Reason = ld.Error()
			}
		} else {
			e.log.Clear()
		}

		result.Cases = append(result.Cases, cr)
		e.reporter.CaseFinished(f.Path(), cr)

		if !cr.Passed {
			result.Outcome = domain.Fail
			result.Kind = cr.Kind
			result.Reason = cr.Reason
			result.Entries = cr.Entries
			return
		}
	}
}

func caseFailureKind(err error) domain.FailureKind {
	var timeout *CaseTimeoutError
	var logged *LogDetectedFailure
	switch {
	case errors.As(err, &timeout):
		return domain.FailureCaseTimeout
	case errors.As(err, &logged):
		return domain.FailureLogDetected
	default:
		return domain.FailureCaseThrew
	}
}

// fail marks result as failed at the given stage
func fail(result *domain.FileResult, kind domain.FailureKind, err error, entries []domain.LogEntry) {
	result.Outcome = domain.Fail
	result.Kind = kind
	result.Reason = err.Error()
	result.Entries = entries
}
