package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"e2erun/internal/browser"
	"e2erun/internal/build"
	"e2erun/internal/discovery"
	"e2erun/internal/env"
	"e2erun/internal/execution"
	"e2erun/internal/failurelog"
	"e2erun/internal/loader"
	"e2erun/internal/server"
	"e2erun/internal/storage"
	"e2erun/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	app *App
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(app *App) *RunCommand {
	return &RunCommand{app: app}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := rc.app.Config
	logger := rc.app.Logger
	defer func() { _ = logger.Sync() }()

	signals := env.FromEnvironment().WithFlags(cfg.Flags.CI, cfg.Flags.ParallelCI)
	logger.Debug("Run signals",
		zap.Bool("ci", signals.CI),
		zap.Bool("parallel_ci", signals.ParallelCI),
		zap.Bool("interactive", signals.Interactive),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Flags.PrepareDB || cfg.Flags.FreshDB {
		if err := prepareDatabase(ctx, rc.app, cfg.Flags.FreshDB); err != nil {
			return err
		}
		fmt.Println()
	}

	log := failurelog.New()
	reporter := ui.NewReporter(os.Stdout, cfg.ProjectPath, signals.Interactive)
	launcher := browser.NewLauncher(cfg.Browser, logger)

	deps := execution.Dependencies{
		Discoverer: discovery.New(cfg),
		Builder:    build.NewBuilder(cfg.GetBuildDir(), logger),
		Loader:     loader.NewInterpreter(log, logger),
		Launcher: execution.BrowserLauncherFunc(func(ctx context.Context) (execution.BrowserSession, error) {
			session, err := launcher.Launch(ctx)
			if err != nil {
				return nil, err
			}
			return session, nil
		}),
		Reporter: reporter,
	}
	if factory := server.NewFactory(cfg, log, logger); factory != nil {
		deps.ServerHooks = factory.Hooks
	}

	summary, runErr := execution.NewSuite(cfg, signals, log, deps, logger).Run(ctx)
	reporter.Summary(summary, runErr)

	if len(summary.Results) > 0 {
		st := storage.NewJSONStorage(cfg)
		if err := st.Save(summary); err != nil {
			color.Red("Failed to save results: %v", err)
		} else if cfg.Flags.OpenFaills && signals.Interactive && runErr != nil {
			rc.openViewer(st)
		}
	}

	return runErr
}

func (rc *RunCommand) openViewer(st *storage.JSONStorage) {
	output, err := st.Load()
	if err != nil {
		color.Red("Failed to load results: %v", err)
		return
	}
	if err := ui.NewErrorViewer(st, rc.app.Logger).View(output); err != nil {
		color.Red("Failed to open viewer: %v", err)
	}
}
