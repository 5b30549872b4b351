package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/feltline/feltline/internal/config"
	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/importer"
	"github.com/feltline/feltline/internal/sqlite"
	"github.com/spf13/cobra"
)

var importUser string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import normalized session records from a JSON Lines file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(args[0], importUser)
	},
}

func init() {
	importCmd.Flags().StringVar(&importUser, "user", "", "User ID to import records for (required)")
	_ = importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

func runImport(path, userID string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat import file: %w", err)
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
	recImporter := importer.New(historySvc, logger)

	result, err := recImporter.Run(context.Background(), userID, importer.NewJSONLines(file))
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d sessions (%s read, %d skipped, %d duplicates removed)\n",
		result.Imported,
		humanize.Bytes(uint64(info.Size())),
		result.Failed,
		result.DuplicatesRemoved,
	)
	return nil
}
