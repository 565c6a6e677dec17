package core

// limiter.go bounds how many comparisons run at once.
//
// A comparison holds two documents and their record sets in memory, so the
// server caps parallel comparisons with a semaphore. A request that cannot get
// a slot within maxWait fails with ErrTooManyComparisons.

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTooManyComparisons is returned when no slot frees up within the wait limit.
var ErrTooManyComparisons = errors.New("too many comparisons in progress, please try again later")

// DefaultMaxConcurrentComparisons is the default limit for parallel comparisons.
const DefaultMaxConcurrentComparisons = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ComparisonLimiter is a counting semaphore over comparison slots.
type ComparisonLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewComparisonLimiter creates a limiter with maxConcurrent slots. Zero or
// negative arguments select the defaults.
func NewComparisonLimiter(maxConcurrent int, maxWait time.Duration) *ComparisonLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentComparisons
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ComparisonLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a free slot. On success the returned release func must be
// called once the comparison is done; calling it more than once is a no-op.
func (l *ComparisonLimiter) Acquire(ctx context.Context) (release func(), err error) {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTooManyComparisons
	}

	l.active.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Add(-1)
			<-l.slots
		})
	}, nil
}

// Do runs fn while holding a slot.
func (l *ComparisonLimiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	release, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// ActiveCount returns the number of comparisons holding a slot.
func (l *ComparisonLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the number of slots.
func (l *ComparisonLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *ComparisonLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no comparison holds a slot or ctx is done.
// Used during shutdown.
func (l *ComparisonLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a snapshot of the limiter for the health endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *ComparisonLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
