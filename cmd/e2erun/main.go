package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"e2erun/internal/cli"
	"e2erun/internal/cli/commands"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "e2erun",
		Short:         "End-to-end test runner",
		Long:          `Runs browser-driven end-to-end test files one at a time against a freshly started server, treating unexpected server and browser errors as failures and retrying failed files once in CI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Config and logger are loaded once flags are parsed
	app := &commands.App{}
	cmds := commands.NewCommands(app)

	// Register all commands
	cmds.Register(rootCmd, &flags, app)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
