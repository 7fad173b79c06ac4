// Package loader evaluates built test files with a Go interpreter.
//
// Every Load creates a new interpreter, so package-level state of a test file
// never carries over between attempts or files.
package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"e2erun/internal/build"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
	"e2erun/internal/parser"
)

// Interpreter loads test files into fresh yaegi interpreters
type Interpreter struct {
	log    *failurelog.Log
	logger *zap.Logger
}

// NewInterpreter creates a loader whose test-file stdout/stderr go to log
func NewInterpreter(log *failurelog.Log, logger *zap.Logger) *Interpreter {
	return &Interpreter{log: log, logger: logger}
}

// Load evaluates builtPath and calls its Setup with f.
// Usage errors recorded by Setup are returned as *harness.UsageError.
func (l *Interpreter) Load(ctx context.Context, builtPath string, f *harness.File) (err error) {
	src, err := os.ReadFile(builtPath)
	if err != nil {
		return fmt.Errorf("read built file: %w", err)
	}

	stdout := l.log.Writer("test", parser.Stdout)
	stderr := l.log.Writer("test", parser.Stderr)
	defer stdout.Flush()
	defer stderr.Flush()

	i := interp.New(interp.Options{Stdout: stdout, Stderr: stderr})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("failed to load stdlib: %w", err)
	}
	if err := i.Use(Symbols); err != nil {
		return fmt.Errorf("failed to load e2e symbols: %w", err)
	}

	if _, err := i.EvalWithContext(ctx, string(src)); err != nil {
		return fmt.Errorf("evaluate %s: %w", f.Path(), err)
	}

	v, err := i.Eval("main." + build.EntryPoint)
	if err != nil {
		return fmt.Errorf("%s function not found: %w", build.EntryPoint, err)
	}
	setup, ok := v.Interface().(func(*harness.File))
	if !ok {
		return fmt.Errorf("%s has incorrect signature (expected: func(*e2e.File))", build.EntryPoint)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", build.EntryPoint, r)
		}
	}()
	setup(f)

	l.logger.Debug("Loaded test file",
		zap.String("file", f.Path()),
		zap.String("attempt", f.AttemptID()),
		zap.Int("cases", len(f.Cases())))
	return f.Err()
}
