package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// FixedWindow is a process-local fixed-window counter. It is only a
// safety net for single-instance deployments; multi-instance setups
// should point the limiter at redis instead.
type FixedWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	max    int
	window time.Duration
	now    func() time.Time
}

func NewFixedWindow(max int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		entries: make(map[string]*windowEntry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

func (f *FixedWindow) Allow(_ context.Context, key string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()

	entry, ok := f.entries[key]
	if !ok || now.After(entry.resetAt) {
		f.sweep(now)
		entry = &windowEntry{resetAt: now.Add(f.window)}
		f.entries[key] = entry
	}

	if entry.count >= f.max {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: entry.resetAt.Sub(now),
		}, nil
	}

	entry.count++
	return Result{
		Allowed:   true,
		Remaining: f.max - entry.count,
	}, nil
}

// sweep drops expired windows. Called with the lock held, only on the
// slow path where a new window is being created.
func (f *FixedWindow) sweep(now time.Time) {
	for key, entry := range f.entries {
		if now.After(entry.resetAt) {
			delete(f.entries, key)
		}
	}
}
