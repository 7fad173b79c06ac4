package execution

import (
	"context"

	"e2erun/internal/build"
	"e2erun/internal/domain"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
)

// Builder turns a test file into a loadable artifact
type Builder interface {
	Build(ctx context.Context, sourcePath string) (*build.Artifact, error)
}

// Loader loads a built file and runs its Setup against f
type Loader interface {
	Load(ctx context.Context, builtPath string, f *harness.File) error
}

// BrowserSession is the browser shared by a suite run
type BrowserSession interface {
	// NewPage opens a page whose console output and exceptions go to log
	NewPage(ctx context.Context, log *failurelog.Log) (harness.Page, error)
	Close() error
}

// BrowserLauncher acquires the browser session of a suite run
type BrowserLauncher interface {
	Launch(ctx context.Context) (BrowserSession, error)
}

// BrowserLauncherFunc adapts a function to BrowserLauncher
type BrowserLauncherFunc func(ctx context.Context) (BrowserSession, error)

// Launch calls fn(ctx)
func (fn BrowserLauncherFunc) Launch(ctx context.Context) (BrowserSession, error) {
	return fn(ctx)
}

// Discoverer produces the ordered file set of a suite run
type Discoverer interface {
	Discover() ([]string, error)
}

// FileRunner executes one attempt of one file
type FileRunner interface {
	Execute(ctx context.Context, path string, attempt Attempt) (domain.FileResult, error)
}

// Reporter receives progress for presentation
type Reporter interface {
	PassStarted(pass int, files []string)
	FileStarted(path string, attempt Attempt)
	CaseFinished(path string, result domain.CaseResult)
	FileFinished(result domain.FileResult)
}

// NopReporter discards all progress
type NopReporter struct{}

func (NopReporter) PassStarted(int, []string)              {}
func (NopReporter) FileStarted(string, Attempt)            {}
func (NopReporter) CaseFinished(string, domain.CaseResult) {}
func (NopReporter) FileFinished(domain.FileResult)         {}
