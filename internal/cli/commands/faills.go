package commands

import (
	"github.com/spf13/cobra"

	"e2erun/internal/storage"
	"e2erun/internal/ui"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	app *App
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(app *App) *FaillsCommand {
	return &FaillsCommand{app: app}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	st := storage.NewJSONStorage(fc.app.Config)
	results, err := st.Load()
	if err != nil {
		return err
	}

	return ui.NewErrorViewer(st, fc.app.Logger).View(results)
}
