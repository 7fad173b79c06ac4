// Package harness defines the per-file execution context handed to a test file.
//
// A test file is a Go source file in package main that exposes
//
//	func Setup(f *e2e.File)
//
// Setup declares whether the file runs or is skipped, registers its cases and
// optionally installs server and after-each hooks. A new File is created for every
// attempt, so nothing a file declares survives into the next attempt.
package harness

import (
	"context"
	"fmt"
	"time"
)

// CaseFunc is the body of a test case
type CaseFunc func(ctx context.Context) error

// HookFunc starts or stops the server under test
type HookFunc func(ctx context.Context) error

// AfterEachFunc runs after every case with whether the case errored
type AfterEachFunc func(ctx context.Context, failed bool) error

// Page is the browser page attached to a running file
type Page interface {
	// Navigate loads url and waits for the load event
	Navigate(url string) error
	// Eval evaluates a JavaScript function expression and returns its result as a string
	Eval(js string) (string, error)
	// Close closes the page; the harness calls it exactly once per file
	Close() error
}

// RunOptions is the run declaration of a file
type RunOptions struct {
	// Flaky files get one retry before their failure is final
	Flaky bool
	// CaseTimeout bounds every case, zero means the configured default
	CaseTimeout time.Duration
	// AllowWarnings stops warning log entries from failing a case
	AllowWarnings bool
}

// Case is a registered test case
type Case struct {
	Description string
	Body        CaseFunc
}

// State of a file after Setup ran
type State int

const (
	StateUndeclared State = iota
	StateSkipped
	StateRunning
)

// File is the execution context of one test file attempt
type File struct {
	path      string
	attemptID string
	baseURL   string

	run        *RunOptions
	skipped    bool
	skipReason string
	cases      []Case

	page        Page
	startServer HookFunc
	stopServer  HookFunc
	afterEach   AfterEachFunc
	logf        func(format string, args ...any)

	err error
}

// NewFile creates the context for one attempt of the file at path
func NewFile(path, attemptID, baseURL string) *File {
	return &File{path: path, attemptID: attemptID, baseURL: baseURL}
}

// usage records the first usage error
func (f *File) usage(format string, args ...any) {
	if f.err == nil {
		f.err = &UsageError{File: f.path, Msg: fmt.Sprintf(format, args...)}
	}
}

// Run declares that the file runs with the given options
func (f *File) Run(opts RunOptions) {
	switch {
	case f.skipped:
		f.usage("Run declared on a skipped file")
	case f.run != nil:
		f.usage("Run declared twice")
	case opts.CaseTimeout < 0:
		f.usage("negative case timeout %s", opts.CaseTimeout)
	default:
		f.run = &opts
	}
}

// Skip declares that the file is skipped
func (f *File) Skip(reason string) {
	switch {
	case f.run != nil:
		f.usage("Skip declared on a file that already declared Run")
	case len(f.cases) > 0:
		f.usage("Skip declared after %d case(s) were registered", len(f.cases))
	case f.skipped:
		f.usage("Skip declared twice")
	default:
		f.skipped = true
		f.skipReason = reason
	}
}

// Test registers a case, cases run in registration order
func (f *File) Test(description string, body CaseFunc) {
	switch {
	case f.skipped:
		f.usage("case %q registered on a skipped file", description)
	case body == nil:
		f.usage("case %q has no body", description)
	default:
		f.cases = append(f.cases, Case{Description: description, Body: body})
	}
}

// OnServerStart installs the server start hook, replacing the configured default
func (f *File) OnServerStart(hook HookFunc) {
	f.startServer = hook
}

// OnServerStop installs the server stop hook, replacing the configured default
func (f *File) OnServerStop(hook HookFunc) {
	f.stopServer = hook
}

// AfterEach installs the hook that runs after every case
func (f *File) AfterEach(hook AfterEachFunc) {
	f.afterEach = hook
}

// Page returns the browser page, nil until server start begins
func (f *File) Page() Page {
	return f.page
}

// BaseURL returns the URL of the server under test
func (f *File) BaseURL() string {
	return f.baseURL
}

// Path returns the test file path
func (f *File) Path() string {
	return f.path
}

// AttemptID identifies this attempt of the file
func (f *File) AttemptID() string {
	return f.attemptID
}

// Logf writes a diagnostic line that ends up in the failure report
func (f *File) Logf(format string, args ...any) {
	if f.logf != nil {
		f.logf(format, args...)
	}
}

// Err returns the first usage error recorded while declaring
func (f *File) Err() error {
	return f.err
}

// State validates the declarations and returns whether the file runs or is skipped
func (f *File) State() (State, error) {
	if f.err != nil {
		return StateUndeclared, f.err
	}
	switch {
	case f.skipped:
		if f.run != nil || len(f.cases) > 0 {
			return StateUndeclared, &UsageError{File: f.path, Msg: "skipped file has a run declaration or cases"}
		}
		return StateSkipped, nil
	case f.run != nil:
		return StateRunning, nil
	case len(f.cases) > 0:
		return StateUndeclared, &UsageError{File: f.path, Msg: "cases registered without a Run declaration"}
	default:
		return StateUndeclared, &UsageError{File: f.path, Msg: "file declared neither Run nor Skip"}
	}
}

// Declaration returns the run declaration, nil for skipped or undeclared files
func (f *File) Declaration() *RunOptions {
	if f.run == nil {
		return nil
	}
	opts := *f.run
	return &opts
}

// SkipReason returns the reason passed to Skip
func (f *File) SkipReason() string {
	return f.skipReason
}

// Cases returns the registered cases in registration order
func (f *File) Cases() []Case {
	out := make([]Case, len(f.cases))
	copy(out, f.cases)
	return out
}

// AttachPage assigns the browser page, it may be assigned only once
func (f *File) AttachPage(p Page) error {
	if f.page != nil {
		return &InvariantViolation{Msg: "page attached twice to " + f.path}
	}
	f.page = p
	return nil
}

// ServerHooks returns the server start and stop hooks, either may be nil
func (f *File) ServerHooks() (start, stop HookFunc) {
	return f.startServer, f.stopServer
}

// AfterEachHook returns the after-each hook, nil if none was installed
func (f *File) AfterEachHook() AfterEachFunc {
	return f.afterEach
}

// SetDefaults installs configured server hooks and the diagnostic sink before
// Setup runs, so the file can still replace the hooks.
func (f *File) SetDefaults(start, stop HookFunc, logf func(format string, args ...any)) {
	f.startServer = start
	f.stopServer = stop
	f.logf = logf
}
