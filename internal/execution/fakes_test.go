package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"e2erun/internal/build"
	"e2erun/internal/config"
	"e2erun/internal/domain"
	"e2erun/internal/env"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
)

// recorder collects events in order from fakes and test files
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeBuilder struct {
	root string
	errs map[string]error

	mu        sync.Mutex
	artifacts []*build.Artifact
}

func (b *fakeBuilder) Build(_ context.Context, path string) (*build.Artifact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dir := filepath.Join(b.root, fmt.Sprintf("build-%d", len(b.artifacts)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	a := build.NewArtifact(filepath.Join(dir, filepath.Base(path)), dir)
	a.ID = filepath.Base(dir)
	b.artifacts = append(b.artifacts, a)
	return a, b.errs[path]
}

// setupFunc plays the role of a test file's Setup; attempt counts loads of the path
type setupFunc func(f *harness.File, attempt int)

type fakeLoader struct {
	setups map[string]setupFunc
	errs   map[string]error

	mu    sync.Mutex
	loads map[string]int
}

func (l *fakeLoader) Load(_ context.Context, _ string, f *harness.File) error {
	l.mu.Lock()
	if l.loads == nil {
		l.loads = make(map[string]int)
	}
	l.loads[f.Path()]++
	attempt := l.loads[f.Path()]
	l.mu.Unlock()

	if err := l.errs[f.Path()]; err != nil {
		return err
	}
	if setup := l.setups[f.Path()]; setup != nil {
		setup(f, attempt)
	}
	return f.Err()
}

func (l *fakeLoader) count(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[path]
}

type fakeSession struct {
	rec     *recorder
	pageErr error

	mu     sync.Mutex
	pages  []*fakePage
	closed bool
}

func (s *fakeSession) NewPage(_ context.Context, log *failurelog.Log) (harness.Page, error) {
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &fakePage{rec: s.rec, log: log}
	s.pages = append(s.pages, p)
	s.rec.add("page opened")
	return p, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rec.add("session closed")
	return nil
}

// fakePage emulates a browser page; evaluating "console.error(...)" lands in the log
type fakePage struct {
	rec *recorder
	log *failurelog.Log

	mu     sync.Mutex
	closes int
}

func (p *fakePage) Navigate(url string) error {
	p.rec.add("navigate %s", url)
	return nil
}

func (p *fakePage) Eval(js string) (string, error) {
	if len(js) > len("console.error(") && js[:len("console.error(")] == "console.error(" {
		p.log.AddText("browser", domain.SeverityError, js[len("console.error("):len(js)-1])
	}
	return "", nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	p.rec.add("page closed")
	return nil
}

func (p *fakePage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

type staticFiles []string

func (s staticFiles) Discover() ([]string, error) {
	return s, nil
}

type recordingReporter struct {
	NopReporter
	rec *recorder
}

func (r recordingReporter) PassStarted(pass int, files []string) {
	r.rec.add("pass %d: %d file(s)", pass, len(files))
}

func (r recordingReporter) CaseFinished(path string, result domain.CaseResult) {
	r.rec.add("case %s %q passed=%t", path, result.Description, result.Passed)
}

// testEnv wires fakes the way the run command wires the real collaborators
type testEnv struct {
	t        *testing.T
	cfg      *config.Config
	log      *failurelog.Log
	rec      *recorder
	builder  *fakeBuilder
	loader   *fakeLoader
	sessions []*fakeSession
	hooks    func() (start, stop harness.HookFunc)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.New()
	cfg.CaseTimeout = 2 * time.Second
	return &testEnv{
		t:       t,
		cfg:     cfg,
		log:     failurelog.New(),
		rec:     &recorder{},
		builder: &fakeBuilder{root: t.TempDir(), errs: map[string]error{}},
		loader:  &fakeLoader{setups: map[string]setupFunc{}, errs: map[string]error{}},
	}
}

func (e *testEnv) file(path string, setup setupFunc) {
	e.loader.setups[path] = setup
}

func (e *testEnv) executor(signals env.Signals) (*FileExecutor, *fakeSession) {
	session := &fakeSession{rec: e.rec}
	e.sessions = append(e.sessions, session)
	return NewFileExecutor(e.cfg, e.builder, e.loader, session, e.log,
		NewServerLifecycle(e.log, signals, zap.NewNop()), e.hooks, recordingReporter{rec: e.rec}, zap.NewNop()), session
}

func (e *testEnv) suite(signals env.Signals, files ...string) *Suite {
	launcher := BrowserLauncherFunc(func(context.Context) (BrowserSession, error) {
		session := &fakeSession{rec: e.rec}
		e.sessions = append(e.sessions, session)
		return session, nil
	})
	return NewSuite(e.cfg, signals, e.log, Dependencies{
		Discoverer:  staticFiles(files),
		Builder:     e.builder,
		Loader:      e.loader,
		Launcher:    launcher,
		ServerHooks: e.hooks,
		Reporter:    recordingReporter{rec: e.rec},
	}, zap.NewNop())
}

// passing declares a file with n passing cases
func passing(n int) setupFunc {
	return func(f *harness.File, _ int) {
		f.Run(harness.RunOptions{})
		for i := 0; i < n; i++ {
			f.Test(fmt.Sprintf("case %d", i+1), func(context.Context) error { return nil })
		}
	}
}
