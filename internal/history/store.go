// Package history keeps a log of comparison runs. Only summaries are stored:
// names, counts and timings, never the rosters themselves.
package history

import (
	"context"
	"time"

	"github.com/JonMunkholm/senioritydiff/internal/core"
)

// Limits for Recent.
const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// Store persists run summaries. Implementations are safe for concurrent use.
type Store interface {
	Append(ctx context.Context, run core.RunSummary) error
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]core.RunSummary, error)
	// Prune deletes runs started before cutoff and reports how many went.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// ClampLimit maps a requested page size into [1, MaxLimit], using
// DefaultLimit for non-positive values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
