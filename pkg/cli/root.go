// Package cli implements the racing admin command line: serving the API
// and inspecting the store offline.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"racing-api/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if getOutputFormat(rootCmd) == "json" {
			_ = printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// globalFlags are the persistent flags shared by every subcommand. Empty
// values fall back to the environment.
type globalFlags struct {
	dbDriver string
	dbPath   string
	envFile  string
	output   string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "racing",
		Short:         "Racing results API",
		Long:          "Serve the racing results REST API and inspect its store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("RACING_OUTPUT"); v != "" {
					flags.output = v
				} else {
					flags.output = defaultOutputFormat(cmd.OutOrStdout())
				}
				_ = cmd.Root().PersistentFlags().Set("output", flags.output)
			}
			return validateOutputFormat(flags.output)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.dbDriver, "db-driver", "", "Store driver: sqlite3 or duckdb (default $DB_DRIVER or sqlite3)")
	pf.StringVar(&flags.dbPath, "db-path", "", "Store file path (default $DB_PATH or racing.sqlite)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	pf.StringVarP(&flags.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newServeCmd(&flags))
	rootCmd.AddCommand(newDescribeCmd(&flags))
	rootCmd.AddCommand(newStandingsCmd(&flags))
	rootCmd.AddCommand(newMigrateCmd(&flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig reads the environment (after the dotenv file) and applies the
// store flags on top.
func loadConfig(flags *globalFlags, fs *pflag.FlagSet) (*config.Config, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return nil, err
	}
	if fs.Changed("db-driver") {
		if err := os.Setenv("DB_DRIVER", flags.dbDriver); err != nil {
			return nil, err
		}
	}
	if fs.Changed("db-path") {
		if err := os.Setenv("DB_PATH", flags.dbPath); err != nil {
			return nil, err
		}
	}
	return config.LoadFromEnv()
}

// defaultOutputFormat is table on a terminal and json otherwise.
func defaultOutputFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return "table"
	}
	return "json"
}
