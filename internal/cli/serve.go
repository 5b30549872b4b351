package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feltline/feltline/internal/config"
	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/domain/live"
	"github.com/feltline/feltline/internal/importer"
	"github.com/feltline/feltline/internal/repository"
	"github.com/feltline/feltline/internal/sqlite"
	"github.com/feltline/feltline/internal/transport"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	kv := sqlite.NewKVStore(db)
	historyRepo := sqlite.NewHistoryRepository(db)
	keyRepo := sqlite.NewKeyRepository(db)

	historySvc := history.NewService(historyRepo, logger)
	manager := live.NewManager(kv, historySvc, live.SystemClock{}, logger, live.Options{
		Rules: live.Rules{
			MaxDuration:  cfg.Session.MaxDuration,
			AbandonAfter: cfg.Session.AbandonAfter,
		},
		TickPeriod:   cfg.Session.Tick,
		PersistEvery: cfg.Session.PersistEvery,
	})
	recImporter := importer.New(historySvc, logger)

	resolver := &apiKeyResolver{keys: keyRepo}
	router := transport.NewServer(manager, historySvc, recImporter, transport.AuthMiddleware(resolver), logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	errCh := make(chan error, 1)

	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// apiKeyResolver maps bearer tokens to user IDs via hashed API keys.
type apiKeyResolver struct {
	keys repository.KeyRepository
}

func (r *apiKeyResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	return r.keys.ResolveUser(ctx, transport.HashToken(token))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
