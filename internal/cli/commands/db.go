package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"e2erun/internal/database"
)

// DBCommand handles the db command
type DBCommand struct {
	app *App
}

// NewDBCommand creates a new DBCommand
func NewDBCommand(app *App) *DBCommand {
	return &DBCommand{app: app}
}

// Execute runs the command
func (dc *DBCommand) Execute(cmd *cobra.Command, args []string) error {
	return prepareDatabase(cmd.Context(), dc.app, dc.app.Config.Flags.FreshDB)
}

// prepareDatabase creates (or recreates) the application database and migrates it
func prepareDatabase(ctx context.Context, app *App, fresh bool) error {
	cfg := app.Config

	created, err := database.NewManager(cfg, app.Logger).Prepare(ctx, fresh)
	if err != nil {
		return fmt.Errorf("prepare database: %w", err)
	}
	if created {
		color.Green("✓ Database %s created", cfg.GetDatabaseName())
	} else {
		color.White("Database %s already exists", cfg.GetDatabaseName())
	}

	if err := database.NewMigrator(cfg, app.Logger, os.Stdout).Run(ctx); err != nil {
		return err
	}
	return nil
}
