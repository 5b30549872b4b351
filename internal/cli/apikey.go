package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/feltline/feltline/internal/config"
	"github.com/feltline/feltline/internal/sqlite"
	"github.com/feltline/feltline/internal/transport"
	"github.com/spf13/cobra"
)

var (
	apikeyUser string
	apikeyDesc string
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Provision an API key for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAPIKey(apikeyUser, apikeyDesc)
	},
}

func init() {
	apikeyCmd.Flags().StringVar(&apikeyUser, "user", "", "User ID the key belongs to (required)")
	apikeyCmd.Flags().StringVar(&apikeyDesc, "description", "", "Key description")
	_ = apikeyCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(apikeyCmd)
}

func runAPIKey(userID, description string) error {
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

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generating key: %w", err)
	}
	token := hex.EncodeToString(raw)

	keys := sqlite.NewKeyRepository(db)
	if err := keys.Insert(context.Background(), transport.HashToken(token), userID, description); err != nil {
		return fmt.Errorf("storing key: %w", err)
	}

	// Printed once; only the hash is stored.
	fmt.Println(token)
	return nil
}
