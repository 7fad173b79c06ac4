package execution

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"e2erun/internal/harness"
)

// CaseExecutor runs one case body under a timeout
type CaseExecutor struct {
	logger *zap.Logger
}

// NewCaseExecutor creates a new CaseExecutor
func NewCaseExecutor(logger *zap.Logger) *CaseExecutor {
	return &CaseExecutor{logger: logger}
}

// Run races body against timeout. It returns nil, a *CaseThrewError or a
// *CaseTimeoutError; exactly one of them. A body that loses the race keeps
// running on its own goroutine and its result is dropped. Its context is
// cancelled so well-behaved bodies can stop.
func (e *CaseExecutor) Run(ctx context.Context, description string, body harness.CaseFunc, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so an abandoned body can still deliver and exit
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Debug("Case panicked", zap.String("case", description), zap.ByteString("stack", debug.Stack()))
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- body(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &CaseThrewError{Description: description, Err: err}
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &CaseTimeoutError{Description: description, Timeout: timeout}
		}
		return &CaseThrewError{Description: description, Err: ctx.Err()}
	}
}
