package ui

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"e2erun/internal/domain"
	"e2erun/internal/execution"
)

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	skipColor  = color.New(color.FgYellow)
	titleColor = color.New(color.FgCyan, color.Bold)
	dimColor   = color.New(color.FgHiBlack)
)

// Reporter prints case lines and failure blocks as a run progresses. Interactive
// terminals also get a progress bar per pass.
type Reporter struct {
	out         io.Writer
	projectPath string
	interactive bool

	mu     sync.Mutex
	bar    *ProgressBar
	passed int
	failed int
}

// NewReporter creates a Reporter writing to out
func NewReporter(out io.Writer, projectPath string, interactive bool) *Reporter {
	return &Reporter{
		out:         out,
		projectPath: projectPath,
		interactive: interactive,
	}
}

// PassStarted announces a pass over files
func (r *Reporter) PassStarted(pass int, files []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finishBar()
	r.passed, r.failed = 0, 0
	if pass == 1 {
		titleColor.Fprintf(r.out, "\nRunning %d test file(s)\n", len(files))
	} else {
		titleColor.Fprintf(r.out, "\nRetrying %d failed test file(s) (final attempt)\n", len(files))
	}
	if r.interactive {
		r.bar = NewProgressBar(len(files), fmt.Sprintf("Pass %d", pass))
	}
}

// FileStarted prints the file header
func (r *Reporter) FileStarted(path string, attempt execution.Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearBar()
	if attempt.Pass > 1 {
		fmt.Fprintf(r.out, "\n%s %s\n", r.rel(path), dimColor.Sprintf("(attempt %d)", attempt.Pass))
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", r.rel(path))
}

// CaseFinished prints the pass/fail line of a case
func (r *Reporter) CaseFinished(path string, result domain.CaseResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearBar()
	if result.Passed {
		passColor.Fprint(r.out, "  ✓ ")
		fmt.Fprintf(r.out, "%s %s\n", result.Description, dimColor.Sprintf("(%s)", result.Duration.Round(time.Millisecond)))
		return
	}
	failColor.Fprintf(r.out, "  ✗ %s\n", result.Description)
}

// FileFinished prints the skip line or the failure block of an attempt
func (r *Reporter) FileFinished(result domain.FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearBar()
	switch {
	case result.Skipped:
		skipColor.Fprintf(r.out, "  - skipped: %s\n", result.SkipReason)
		r.passed++
	case result.Failed():
		r.printFailure(result)
		r.failed++
	default:
		r.passed++
	}
	if r.bar != nil {
		r.bar.Update(r.passed, r.failed)
	}
}

// printFailure writes the failure reason block with the captured log entries
func (r *Reporter) printFailure(result domain.FileResult) {
	framing := "will be retried"
	if result.Final {
		framing = "final"
	}
	failColor.Fprintf(r.out, "  %s failed on attempt %d (%s): %s\n", result.Kind, result.Pass, framing, result.Reason)
	if len(result.Entries) == 0 {
		return
	}
	dimColor.Fprintln(r.out, "  captured log:")
	for _, e := range result.Entries {
		line := fmt.Sprintf("    [%s] %-7s %s", e.Source, e.Severity, e.Text)
		switch e.Severity {
		case domain.SeverityError:
			failColor.Fprintln(r.out, line)
		case domain.SeverityWarning:
			skipColor.Fprintln(r.out, line)
		default:
			fmt.Fprintln(r.out, line)
		}
	}
}

// Summary prints the outcome of the run: the files still failing after
// retries, or the abort reason.
func (r *Reporter) Summary(summary domain.RunSummary, runErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finishBar()
	fmt.Fprintln(r.out)

	var abort *execution.AbortError
	if errors.As(runErr, &abort) {
		failColor.Fprintf(r.out, "✗ Aborted: %s failed on its final attempt in parallel CI\n", r.rel(abort.Path))
	}

	if len(summary.Failing) == 0 {
		if runErr == nil {
			passColor.Fprintf(r.out, "✓ All test files passed (%d attempt(s) in %s)\n", len(summary.Results), summary.Duration.Round(time.Millisecond))
		}
		return
	}

	failColor.Fprintf(r.out, "✗ %d test file(s) still failing after retries:\n", len(summary.Failing))
	for _, path := range summary.Failing {
		failColor.Fprintf(r.out, "  %s\n", r.rel(path))
	}
}

func (r *Reporter) rel(path string) string {
	if r.projectPath == "" {
		return path
	}
	if rel, err := filepath.Rel(r.projectPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (r *Reporter) clearBar() {
	if r.bar != nil {
		r.bar.Clear()
	}
}

func (r *Reporter) finishBar() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}
