package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schalkje/DiagramDesigner/internal/api"
	"github.com/schalkje/DiagramDesigner/internal/auth"
	"github.com/schalkje/DiagramDesigner/internal/config"
	"github.com/schalkje/DiagramDesigner/internal/service"
	"github.com/schalkje/DiagramDesigner/internal/storage"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the HTTP API server.

The schema is migrated on startup when database.auto_migrate is set.
SIGINT and SIGTERM trigger a graceful shutdown bounded by
server.shutdown_timeout.`,
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Close() //nolint:errcheck
	log := logger.Logger

	// Initialize storage layer
	store, err := storage.New(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(cmd.Context()); err != nil {
			store.Close() //nolint:errcheck
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		log.Info().Str("driver", store.Dialect()).Msg("schema migrated")
	}

	jwt := auth.NewJWTService(cfg.Security.JWTSecret, config.TokenLifetime)
	svc := service.New(store, jwt, log)
	server := api.New(cfg, store, svc, jwt, log)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil

	case err := <-errChan:
		store.Close() //nolint:errcheck
		return fmt.Errorf("server error: %w", err)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Close() //nolint:errcheck

		store, err := storage.New(cfg.Database, logger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close() //nolint:errcheck

		if err := store.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		fmt.Printf("✓ Schema is up to date (%s)\n", store.Dialect())
		return nil
	},
}
