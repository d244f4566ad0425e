package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
)

// rootCmd imports when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gardenplanner",
	Short: "Merge crop variety data from a planting calendar into the garden planner's data file",
	Long: `gardenplanner reads the crop record set declared in a planting-calendar page
and merges selected fields into the planner's crop data file, rewriting only
the record-set declaration and leaving the rest of the file byte-for-byte intact.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runImport,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command and exits 1 with a single "Error: " line on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	bindImportFlags(rootCmd)
}
