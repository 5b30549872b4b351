package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/feltline/feltline/internal/config"
	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/sqlite"
	"github.com/spf13/cobra"
)

var sweepUser string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove duplicate session records for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(sweepUser)
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepUser, "user", "", "User ID to sweep (required)")
	_ = sweepCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(userID string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	historySvc := history.NewService(sqlite.NewHistoryRepository(db), logger)

	deleted, err := historySvc.SweepDuplicates(context.Background(), userID)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %s duplicate record(s)\n", humanize.Comma(int64(deleted)))
	return nil
}
