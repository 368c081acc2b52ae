// Package cli implements the csvgrid command line.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvgrid/internal/logging"
)

var version = "dev"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "csvgrid",
	Short: "Fetch, parse and show CSV files as a grid",
	Long: `csvgrid downloads a CSV resource, optionally through a CORS-style proxy
prefix, infers a type for every cell and prints the rows as a table, JSON
or cleaned CSV.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.SetupWriter(cmd.ErrOrStderr(), logLevel, "text")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
}

// SetVersion sets the string printed by "csvgrid version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
