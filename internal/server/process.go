// Package server runs the configured server under test as a child process.
// Its output is streamed line by line into the failure log so errors printed by
// the server fail the case that provoked them.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"e2erun/internal/config"
	"e2erun/internal/failurelog"
	"e2erun/internal/harness"
	"e2erun/internal/parser"
)

// Process is one run of the server command
type Process struct {
	cfg    config.ServerConfig
	dir    string
	log    *failurelog.Log
	logger *zap.Logger
	client *http.Client

	mu     sync.Mutex
	cmd    *exec.Cmd
	pumps  *errgroup.Group
	exited chan struct{}
	err    error
}

// NewProcess creates a server process for cfg, started in dir
func NewProcess(cfg config.ServerConfig, dir string, log *failurelog.Log, logger *zap.Logger) *Process {
	return &Process{
		cfg:    cfg,
		dir:    dir,
		log:    log,
		logger: logger,
		client: &http.Client{Timeout: 2 * time.Second},
	}
}

// Start launches the command and waits until its URL answers
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return errors.New("server already started")
	}
	if len(p.cfg.Command) == 0 {
		return errors.New("no server command configured")
	}

	cmd := exec.Command(p.cfg.Command[0], p.cfg.Command[1:]...)
	cmd.Dir = p.dir
	cmd.Env = os.Environ() // Start with current environment
	for k, v := range p.cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("server stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("server stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server %q: %w", p.cfg.Command[0], err)
	}

	pumps := &errgroup.Group{}
	pumps.Go(func() error { return p.pump(stdout, parser.Stdout) })
	pumps.Go(func() error { return p.pump(stderr, parser.Stderr) })

	exited := make(chan struct{})
	go func() {
		// Pipes must be drained before Wait closes them
		_ = pumps.Wait()
		p.err = cmd.Wait()
		close(exited)
	}()

	p.cmd = cmd
	p.pumps = pumps
	p.exited = exited
	p.logger.Info("Server started",
		zap.Strings("command", p.cfg.Command),
		zap.Int("pid", cmd.Process.Pid))

	if err := p.waitReady(ctx); err != nil {
		return err
	}
	return nil
}

// pump copies one output stream into the failure log
func (p *Process) pump(r io.Reader, stream parser.Stream) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.log.AddLine("server", stream, scanner.Text())
	}
	return scanner.Err()
}

// waitReady polls the server URL until it answers with any HTTP status
func (p *Process) waitReady(ctx context.Context) error {
	if p.cfg.URL == "" {
		return nil
	}
	timeout := p.cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = config.DefaultServerReadyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL, nil)
		if err != nil {
			return fmt.Errorf("server url: %w", err)
		}
		if resp, err := p.client.Do(req); err == nil {
			resp.Body.Close()
			return nil
		}

		select {
		case <-p.exited:
			return fmt.Errorf("server exited before answering on %s: %v", p.cfg.URL, p.err)
		case <-ctx.Done():
			return fmt.Errorf("server not ready on %s after %s", p.cfg.URL, timeout)
		case <-ticker.C:
		}
	}
}

// Stop interrupts the server, kills it after the grace period and waits until
// all of its output has reached the failure log.
func (p *Process) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		return nil
	}
	cmd := p.cmd
	p.cmd = nil

	select {
	case <-p.exited:
		return p.exitError()
	default:
	}

	if runtime.GOOS == "windows" {
		_ = cmd.Process.Kill()
	} else if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
	}

	grace := p.cfg.StopTimeout
	if grace <= 0 {
		grace = config.DefaultServerStopTimeout
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.exited:
	case <-timer.C:
		p.logger.Warn("Server did not stop in time, killing it", zap.Duration("grace", grace))
		_ = cmd.Process.Kill()
		<-p.exited
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-p.exited
		return ctx.Err()
	}
	p.logger.Info("Server stopped")
	return p.exitError()
}

// exitError ignores exits caused by our own interrupt or kill
func (p *Process) exitError() error {
	var exitErr *exec.ExitError
	if p.err == nil || errors.As(p.err, &exitErr) && !exitErr.Exited() {
		return nil
	}
	if errors.As(p.err, &exitErr) && exitErr.ExitCode() == 130 {
		return nil
	}
	return fmt.Errorf("server exited: %w", p.err)
}

// Factory builds a fresh Process for every file attempt
type Factory struct {
	cfg    config.ServerConfig
	dir    string
	log    *failurelog.Log
	logger *zap.Logger
}

// NewFactory returns nil when no server command is configured
func NewFactory(cfg *config.Config, log *failurelog.Log, logger *zap.Logger) *Factory {
	if len(cfg.Server.Command) == 0 {
		return nil
	}
	return &Factory{cfg: cfg.Server, dir: cfg.GetServerDir(), log: log, logger: logger}
}

// Hooks returns start and stop hooks bound to a new process
func (f *Factory) Hooks() (start, stop harness.HookFunc) {
	proc := NewProcess(f.cfg, f.dir, f.log, f.logger)
	return proc.Start, proc.Stop
}
