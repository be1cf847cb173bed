// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/go-htmx/internal/config"
	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/health"
	"github.com/carterperez-dev/templates/go-htmx/internal/schema"
	"github.com/carterperez-dev/templates/go-htmx/internal/server"
	"github.com/carterperez-dev/templates/go-htmx/internal/store"
	"github.com/carterperez-dev/templates/go-htmx/internal/view"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "api",
		Short:         "Users and posts board served over HTMX and JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		newMigrateCmd(&configPath),
	)

	return root
}

func newMigrateCmd(configPath *string) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			logger := setupLogger(cfg.Log)
			slog.SetDefault(logger)

			db, err := core.NewDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process exits next

			if !status {
				if err := schema.Migrate(cmd.Context(), db.Bun, logger); err != nil {
					return err
				}
			}

			records, err := schema.Applied(cmd.Context(), db.Bun)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					rec.Version,
					rec.Name,
					rec.AppliedAt.Format(time.RFC3339),
				)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "list applied migrations without applying new ones")

	return cmd
}

//nolint:funlen // bootstrap code is inherently verbose
func serve(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	worker := core.NewWorker()

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"worker_id", worker.ID(),
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if telemetry.Exporting() {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
			"sample_ratio", core.SampleRatio(cfg.Otel.SampleRate),
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"driver", cfg.Database.Driver,
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := schema.Migrate(ctx, db.Bun, logger); err != nil {
			_ = db.Close() //nolint:errcheck // startup failed
			return err
		}
	}

	var redis *core.Redis
	if cfg.Redis.URL != "" {
		redis, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close() //nolint:errcheck // startup failed
			return err
		}
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	}

	renderer, err := view.New(cfg.App.Name)
	if err != nil {
		return err
	}

	var redisChecker health.Checker
	if redis != nil {
		redisChecker = redis
	}
	healthHandler := health.NewHandler(worker, db, redisChecker)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	mountRoutes(srv.Router(), routeDeps{
		cfg:      cfg,
		logger:   logger,
		worker:   worker,
		db:       db,
		redis:    redis,
		store:    store.New(db.Bun),
		renderer: renderer,
		health:   healthHandler,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if redis != nil {
		if err := redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
