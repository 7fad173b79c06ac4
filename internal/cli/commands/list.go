package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"e2erun/internal/discovery"
	"e2erun/internal/storage"
	"e2erun/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new ListCommand
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.app.Config

	files, err := discovery.New(cfg).Discover()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No test files found")
		return nil
	}

	formatter := ui.NewFormatter(cfg, discovery.NewParser(), os.Stdout)

	// Files left failing by the last run are marked; a missing results file is fine
	var failed map[string]struct{}
	if last, err := storage.NewJSONStorage(cfg).Load(); err == nil {
		failed = formatter.FailedPaths(last)
	}

	formatter.PrintTestList(files, cfg.Flags.TestCases, failed)
	return nil
}
