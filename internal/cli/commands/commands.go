package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"e2erun/internal/cli"
	"e2erun/internal/config"
	"e2erun/internal/logging"
)

// App is the state shared by all commands. It is filled in once flags are parsed.
type App struct {
	Config *config.Config
	Logger *zap.Logger
}

// Commands holds all CLI commands
type Commands struct {
	Run    *RunCommand
	List   *ListCommand
	DB     *DBCommand
	Faills *FaillsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(app *App) *Commands {
	return &Commands{
		Run:    NewRunCommand(app),
		List:   NewListCommand(app),
		DB:     NewDBCommand(app),
		Faills: NewFaillsCommand(app),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, app *App) {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Path to the config file (default: e2erun.yaml in the project)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		logger, err := logging.New(flags.Verbose)
		if err != nil {
			return err
		}
		app.Config = cfg
		app.Logger = logger
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run e2e test files",
		Long:  "Discover e2e test files and run them one at a time against the server under test in a browser, retrying failures once in CI",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder (or file) where test detection should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., 'checkout_*' or '*cart*')")
	runCmd.Flags().BoolVar(&flags.CI, "ci", false, "Run as in CI: retry failed files once (also enabled by the CI environment variable)")
	runCmd.Flags().BoolVar(&flags.ParallelCI, "parallel-ci", false, "Abort on the first final failure (also enabled by PARALLEL_CI)")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Default case timeout (e.g. 45s)")
	runCmd.Flags().BoolVar(&flags.Headful, "headful", false, "Show the browser window")
	runCmd.Flags().BoolVar(&flags.PrepareDB, "prepare-db", false, "Create the application database and run migrations before the suite")
	runCmd.Flags().BoolVar(&flags.FreshDB, "fresh-db", false, "Recreate the application database before the suite (implies --prepare-db)")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered test files",
		Long:  "Scan and list e2e test files without executing them",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., 'checkout_*' or '*cart*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().BoolVar(&flags.TestCases, "test-cases", false, "Also list the cases each file registers")
	rootCmd.AddCommand(listCmd)

	// DB command
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Prepare the application database",
		Long:  "Create the database of the server under test if it is missing and run the configured migrations",
		RunE:  c.DB.Execute,
	}
	dbCmd.Flags().BoolVar(&flags.FreshDB, "fresh", false, "Drop and recreate the database first")
	rootCmd.AddCommand(dbCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display failures from the last run in an interactive viewer",
		RunE:  c.Faills.Execute,
	}
	rootCmd.AddCommand(faillsCmd)
}
