package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/database"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/metrics"
	"github.com/georgemunganga/storefront-api/internal/modules/requestlog"
	"github.com/georgemunganga/storefront-api/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, log, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(db, cfg.Database.Driver, log)
		if err != nil {
			return err
		}
		if err := migrator.Up(); err != nil {
			return err
		}
	}

	var reserver requestlog.Reserver
	if cfg.Redis.Enabled {
		client, err := requestlog.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		reserver = requestlog.NewRedisReserver(client, "", cfg.Redis.ReservationTTL)
		log.Info("In-flight reservations enabled", zap.String("redis", cfg.Redis.Addr()))
	}

	handler := server.NewRouter(cfg, server.Deps{
		DB:       db,
		Reserver: reserver,
		Metrics:  metrics.New(),
		Logger:   log,
	})

	if err := server.New(cfg.App.Port, cfg.HTTP, handler, log).Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
