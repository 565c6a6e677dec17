package history

// pruner.go runs retention for the run log.
//
// The pruner is long-running and context-aware for graceful shutdown. A
// failed prune is logged and retried on the next tick; it never stops the
// server.

import (
	"context"
	"log/slog"
	"time"
)

// PruneConfig holds retention settings. Zero values use the defaults.
type PruneConfig struct {
	Retention time.Duration // runs older than this are deleted (default: 90 days)
	Interval  time.Duration // how often to prune (default: 24h)
}

const (
	DefaultRetention     = 90 * 24 * time.Hour
	DefaultPruneInterval = 24 * time.Hour
)

func (c PruneConfig) withDefaults() PruneConfig {
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.Interval <= 0 {
		c.Interval = DefaultPruneInterval
	}
	return c
}

// StartPruner deletes old runs immediately, then every Interval, until ctx
// is cancelled.
func StartPruner(ctx context.Context, store Store, cfg PruneConfig, logger *slog.Logger) {
	cfg = cfg.withDefaults()
	logger = orDiscard(logger)
	logger.Info("history pruner started", "retention", cfg.Retention, "interval", cfg.Interval)

	pruneOnce(ctx, store, cfg.Retention, time.Now, logger)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("history pruner stopped")
			return
		case <-ticker.C:
			pruneOnce(ctx, store, cfg.Retention, time.Now, logger)
		}
	}
}

func pruneOnce(ctx context.Context, store Store, retention time.Duration, now func() time.Time, logger *slog.Logger) int {
	logger = orDiscard(logger)
	start := time.Now()
	cutoff := now().Add(-retention)

	n, err := store.Prune(ctx, cutoff)
	if err != nil {
		logger.Error("history prune failed", "error", err)
		return 0
	}
	logger.Info("history pruned",
		"runs_deleted", n,
		"cutoff", cutoff,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
