package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/senioritydiff/internal/config"
	"github.com/JonMunkholm/senioritydiff/internal/core"
	_ "github.com/JonMunkholm/senioritydiff/internal/core/sources" // Register document formats
	"github.com/JonMunkholm/senioritydiff/internal/history"
	"github.com/JonMunkholm/senioritydiff/internal/logging"
	"github.com/JonMunkholm/senioritydiff/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"history_db", cfg.Database.Enabled(),
		"compare_max_concurrent", cfg.Compare.MaxConcurrent,
		"duplicate_policy", cfg.Normalize.DuplicatePolicy,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Run history: PostgreSQL when configured, memory otherwise
	var store history.Store
	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg, err := history.NewPostgres(ctx, pool)
		if err != nil {
			logger.Error("failed to prepare history schema", "error", err)
			os.Exit(1)
		}
		store = pg
	} else {
		store = history.NewMemory(cfg.History.MemoryCapacity)
		logger.Info("no database configured, keeping run history in memory",
			"capacity", cfg.History.MemoryCapacity,
		)
	}

	service := core.NewService(cfg.ServiceConfig(), store, logger)

	for _, src := range service.Sources() {
		logger.Debug("source registered", "key", src.Key, "extensions", src.Extensions)
	}
	logger.Info("sources registered", "count", core.SourceCount())

	server := web.NewServer(service, store, cfg, logger)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go history.StartPruner(jobCtx, store, history.PruneConfig{
		Retention: cfg.History.Retention,
		Interval:  cfg.History.PruneInterval,
	}, logger)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active comparisons to complete (with timeout)
		status := service.Limiter().Status()
		if status.Active > 0 {
			logger.Info("waiting for comparisons to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				logger.Warn("comparisons did not complete in time", "error", err)
			} else {
				logger.Info("all comparisons completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		logger.Info("server stopped", "error", err)
	}
}

// openPool connects to PostgreSQL with the configured pool limits.
func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(db.MaxConns)
	poolConfig.MinConns = int32(db.MinConns)
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(db.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
