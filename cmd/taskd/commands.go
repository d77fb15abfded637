package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub-backend/pkg/config"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/logger"
	"taskhub-backend/pkg/metrics"
	"taskhub-backend/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskd",
		Short:         "Multi-tenant task management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server on PORT (or --port).

The store is PostgreSQL when POSTGRES_DSN is set and SQLite at SQLITE_PATH
otherwise. The schema is applied on startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg)
	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET is not set; using the development default")
	}

	store, err := database.NewDatabase(ctx, dbConfig(cfg), log)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	router, err := server.Build(cfg, store, m, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newMigrateCommand() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes",
		Long: `Apply the schema to the configured store. Existing tables are left
untouched, so the command can be run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if dsn != "" {
				cfg.PostgresDSN = dsn
			}
			return migrate(cmd.Context(), cfg, logger.New(cfg))
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string (overrides POSTGRES_DSN)")
	return cmd
}

func migrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.PostgresDSN != "" {
		log.Info().Str("dsn", maskPassword(cfg.PostgresDSN)).Msg("connecting to PostgreSQL")
	} else {
		log.Info().Str("path", cfg.SQLitePath).Msg("opening SQLite database")
	}

	// NewDatabase migrates before returning.
	store, err := database.NewDatabase(ctx, dbConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx); err != nil {
		return err
	}
	log.Info().Msg("database schema is up to date")
	return nil
}

func dbConfig(cfg *config.Config) database.DatabaseConfig {
	return database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	}
}

// maskPassword hides the password of a connection string for logging.
func maskPassword(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Redacted()
	}
	if len(dsn) > 50 {
		return dsn[:20] + "***" + dsn[len(dsn)-20:]
	}
	if len(dsn) > 10 {
		return dsn[:10] + "***"
	}
	return "***"
}
