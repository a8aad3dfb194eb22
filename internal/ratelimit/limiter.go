// Package ratelimit implements fixed-window counters keyed by
// "operation:actor", with an in-process backend and a Redis backend.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a fixed-window counter backend. Allow reports whether the call
// identified by key fits in the current window, and how long until the
// window resets when it does not.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

type window struct {
	count   int
	resetAt time.Time
}

type FixedWindowLimiter struct {
	mu        sync.Mutex
	store     map[string]*window
	nextSweep time.Time
	now       func() time.Time
}

const sweepInterval = time.Minute

func NewFixedWindowLimiter() *FixedWindowLimiter {
	return newFixedWindowLimiter(time.Now)
}

func newFixedWindowLimiter(now func() time.Time) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store:     make(map[string]*window),
		nextSweep: now().Add(sweepInterval),
		now:       now,
	}
}

// Allow resets the entry only once now is strictly after resetAt. A denied
// call never increments the counter.
func (l *FixedWindowLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, time.Duration, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, w := range l.store {
			if now.After(w.resetAt) {
				delete(l.store, k)
			}
		}
		l.nextSweep = now.Add(sweepInterval)
	}

	entry, ok := l.store[key]
	if !ok || now.After(entry.resetAt) {
		l.store[key] = &window{count: 1, resetAt: now.Add(win)}
		return true, 0, nil
	}
	if entry.count >= limit {
		retryAfter := entry.resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}
	entry.count++
	return true, 0, nil
}

func (l *FixedWindowLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.store)
}
