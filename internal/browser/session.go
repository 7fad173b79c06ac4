// Package browser provides the suite's browser session on top of Rod.
// Console output and uncaught exceptions of every page are fed into the failure log.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"e2erun/internal/config"
	"e2erun/internal/domain"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
)

// Launcher starts browser sessions from configuration
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

// NewLauncher creates a Launcher
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{cfg: cfg, logger: logger}
}

// Launch connects to the configured debugger URL or launches a new browser
func (l *Launcher) Launch(ctx context.Context) (*Session, error) {
	var proc *launcher.Launcher
	controlURL := l.cfg.DebuggerURL

	if controlURL == "" {
		proc = launcher.New().Headless(l.cfg.Headless)
		if l.cfg.Bin != "" {
			proc = proc.Bin(l.cfg.Bin)
		}
		for _, rawFlag := range l.cfg.Flags {
			flagStr := strings.TrimLeft(rawFlag, "-")
			name, val, hasVal := strings.Cut(flagStr, "=")
			if hasVal {
				proc = proc.Set(flags.Flag(name), val)
			} else {
				proc = proc.Set(flags.Flag(name))
			}
		}
		url, err := proc.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = url
	}

	// The session outlives the run context so pages can still be closed after an interrupt
	b := rod.New().ControlURL(controlURL).Context(context.WithoutCancel(ctx))
	if err := b.Connect(); err != nil {
		if proc != nil {
			proc.Kill()
		}
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	l.logger.Debug("Browser session started", zap.String("control_url", controlURL))
	return &Session{browser: b, proc: proc, logger: l.logger}, nil
}

// Session is one browser shared by every file of a suite run
type Session struct {
	mu      sync.Mutex
	browser *rod.Browser
	proc    *launcher.Launcher
	logger  *zap.Logger
}

// NewPage opens a page in a fresh incognito context and streams its console
// and exceptions into log until the page is closed.
func (s *Session) NewPage(ctx context.Context, log *failurelog.Log) (harness.Page, error) {
	s.mu.Lock()
	b := s.browser
	s.mu.Unlock()
	if b == nil {
		return nil, errors.New("browser session closed")
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p := &Page{
		page:      page,
		incognito: incognito,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	_ = proto.RuntimeEnable{}.Call(page)
	p.stream(streamCtx, log)
	return p, nil
}

// Close shuts the browser down
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.proc != nil {
		s.proc.Kill()
		s.proc.Cleanup()
		s.proc = nil
	}
	s.logger.Debug("Browser session closed")
	return err
}

// Page is a browser page attached to one test file
type Page struct {
	page      *rod.Page
	incognito *rod.Browser
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// stream wires console and exception events into log until the page closes
func (p *Page) stream(ctx context.Context, log *failurelog.Log) {
	wait := p.page.Context(ctx).EachEvent(
		func(ev *proto.RuntimeConsoleAPICalled) {
			log.Add(domain.LogEntry{
				Source:   "browser",
				Text:     fmt.Sprintf("console.%s: %s", ev.Type, stringifyConsoleArgs(ev.Args)),
				Severity: consoleSeverity(ev.Type),
			})
		},
		func(ev *proto.RuntimeExceptionThrown) {
			log.Add(domain.LogEntry{
				Source:   "browser",
				Text:     "uncaught exception: " + exceptionText(ev.ExceptionDetails),
				Severity: domain.SeverityError,
			})
		},
	)
	go func() {
		defer close(p.done)
		wait()
	}()
}

// Navigate loads url and waits for the load event
func (p *Page) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return p.page.WaitLoad()
}

// Eval evaluates a JavaScript function expression such as `() => document.title`
func (p *Page) Eval(js string) (string, error) {
	res, err := p.page.Eval(js)
	if err != nil {
		return "", fmt.Errorf("eval: %w", err)
	}
	if res.Value.Nil() {
		return res.Description, nil
	}
	return res.Value.Str(), nil
}

// Rod exposes the underlying page for helpers that need the full driver
func (p *Page) Rod() *rod.Page {
	return p.page
}

// Close closes the page and its incognito context and stops the event stream
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.page.Close()
		if err := p.incognito.Close(); err != nil && p.closeErr == nil {
			p.closeErr = err
		}
		p.cancel()
		<-p.done
	})
	return p.closeErr
}

func consoleSeverity(t proto.RuntimeConsoleAPICalledType) domain.Severity {
	switch t {
	case proto.RuntimeConsoleAPICalledTypeError, proto.RuntimeConsoleAPICalledTypeAssert:
		return domain.SeverityError
	case proto.RuntimeConsoleAPICalledTypeWarning:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			parts = append(parts, a.Value.String())
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}

func exceptionText(details *proto.RuntimeExceptionDetails) string {
	if details == nil {
		return "unknown exception"
	}
	if details.Exception != nil && details.Exception.Description != "" {
		return details.Exception.Description
	}
	return details.Text
}
