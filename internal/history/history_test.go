package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func run(i int) core.RunSummary {
	return core.RunSummary{
		ID:           fmt.Sprintf("run-%02d", i),
		StartedAt:    base.Add(time.Duration(i) * time.Hour),
		DurationMs:   int64(10 * i),
		OldName:      "old.pdf",
		NewName:      "new.pdf",
		TotalOld:     100,
		TotalNew:     101,
		TotalEntries: 2,
		TotalExits:   1,
		TotalChanged: 5,
		ClientIP:     "10.0.0.1",
	}
}

func ids(runs []core.RunSummary) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-3))
	assert.Equal(t, 5, ClampLimit(5))
	assert.Equal(t, MaxLimit, ClampLimit(MaxLimit+1))
}

func TestMemory_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	for i := 1; i <= 3; i++ {
		require.NoError(t, m.Append(ctx, run(i)))
	}

	got, err := m.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-03", "run-02"}, ids(got))

	got, err = m.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemory_Capacity(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	for i := 1; i <= 5; i++ {
		require.NoError(t, m.Append(ctx, run(i)))
	}

	assert.Equal(t, 2, m.Len())
	got, _ := m.Recent(ctx, 10)
	assert.Equal(t, []string{"run-05", "run-04"}, ids(got))
}

func TestMemory_Prune(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	for i := 1; i <= 4; i++ {
		require.NoError(t, m.Append(ctx, run(i)))
	}

	n, err := m.Prune(ctx, run(3).StartedAt)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _ := m.Recent(ctx, 10)
	assert.Equal(t, []string{"run-04", "run-03"}, ids(got))
}

func TestMemory_ImplementsRunRecorder(t *testing.T) {
	var _ core.RunRecorder = NewMemory(0)
	var _ Store = NewMemory(0)
	var _ Store = (*Postgres)(nil)
}

type failingStore struct {
	*Memory
}

func (failingStore) Prune(context.Context, time.Time) (int, error) {
	return 0, errors.New("db down")
}

func TestPruneOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	for i := 0; i < 48; i++ {
		require.NoError(t, m.Append(ctx, run(i)))
	}

	now := func() time.Time { return base.Add(48 * time.Hour) }
	n := pruneOnce(ctx, m, 24*time.Hour, now, nil)

	assert.Equal(t, 24, n)
	assert.Equal(t, 24, m.Len())

	assert.Equal(t, 0, pruneOnce(ctx, failingStore{m}, time.Hour, now, nil))
	assert.Equal(t, 24, m.Len())
}

func TestStartPruner_StopsOnCancel(t *testing.T) {
	m := NewMemory(0)
	require.NoError(t, m.Append(context.Background(), run(1)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		StartPruner(ctx, m, PruneConfig{Retention: time.Hour, Interval: time.Hour}, nil)
		close(done)
	}()

	// the initial pass removes the 2024 run
	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop")
	}
}

// TestPostgres runs against a real database when HISTORY_TEST_DATABASE_URL is set.
func TestPostgres(t *testing.T) {
	url := os.Getenv("HISTORY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HISTORY_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store, err := NewPostgres(ctx, pool)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "DELETE FROM comparison_runs")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Append(ctx, run(i)))
	}

	got, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-03", "run-02"}, ids(got))
	assert.Equal(t, "10.0.0.1", got[0].ClientIP)
	assert.Equal(t, "", got[0].UserAgent)
	assert.True(t, run(3).StartedAt.Equal(got[0].StartedAt))

	n, err := store.Prune(ctx, run(2).StartedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
