package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "feltline",
	Short: "Poker session tracking engine",
	Long: `feltline - live poker session clock, activity log, and history store

Tracks one live session per user with crash-safe recovery, finalizes
sessions into an immutable history, and deduplicates bulk imports.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
