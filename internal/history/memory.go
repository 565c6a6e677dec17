package history

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/senioritydiff/internal/core"
)

// DefaultMemoryCapacity bounds the in-memory log.
const DefaultMemoryCapacity = 1000

// Memory is a Store kept in process memory, used when no database is
// configured. The oldest runs are dropped once capacity is reached.
type Memory struct {
	mu       sync.RWMutex
	runs     []core.RunSummary // append order
	capacity int
}

// NewMemory creates an in-memory store. capacity <= 0 uses DefaultMemoryCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{capacity: capacity}
}

func (m *Memory) Append(ctx context.Context, run core.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	if over := len(m.runs) - m.capacity; over > 0 {
		m.runs = append(m.runs[:0:0], m.runs[over:]...)
	}
	return nil
}

func (m *Memory) Recent(ctx context.Context, limit int) ([]core.RunSummary, error) {
	limit = ClampLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.RunSummary, 0, min(limit, len(m.runs)))
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *Memory) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.runs[:0]
	for _, r := range m.runs {
		if !r.StartedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	n := len(m.runs) - len(kept)
	m.runs = kept
	return n, nil
}

// Len returns the number of stored runs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
