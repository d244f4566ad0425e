package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/machsheltie/gardenplanner"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gardenplanner",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gardenplanner version %s\n", strings.TrimSpace(gardenplanner.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
