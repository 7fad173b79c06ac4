package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"e2erun/internal/config"
)

// Migrator runs the configured migration command against the prepared database
type Migrator struct {
	config *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewMigrator creates a new Migrator writing command output to out
func NewMigrator(cfg *config.Config, logger *zap.Logger, out io.Writer) *Migrator {
	return &Migrator{config: cfg, logger: logger, out: out}
}

// Run executes the migration command. It is a no-op when none is configured.
func (m *Migrator) Run(ctx context.Context) error {
	command := m.config.Database.Migrate
	if len(command) == 0 {
		return nil
	}

	color.Cyan("Running migrations: %v", command)

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = m.config.GetServerDir()
	cmd.Env = append(os.Environ(), "DB_DATABASE="+m.config.GetDatabaseName())
	for k, v := range m.config.Server.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("migration stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("migration stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start migration %q: %w", command[0], err)
	}

	var g errgroup.Group
	g.Go(func() error { return m.copyLines(stdout) })
	g.Go(func() error { return m.copyLines(stderr) })
	pumpErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if pumpErr != nil {
		m.logger.Warn("Reading migration output failed", zap.Error(pumpErr))
	}
	color.Green("✓ Migrations completed")
	return nil
}

func (m *Migrator) copyLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fmt.Fprintf(m.out, "  %s\n", scanner.Text())
	}
	return scanner.Err()
}
