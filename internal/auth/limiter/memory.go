package limiter

import (
	"context"
	"sync"
	"time"
)

type windowKey struct {
	client string
	class  Class
}

type window struct {
	count int
	start time.Time
	span  time.Duration
}

func (w *window) expired(now time.Time) bool {
	return !now.Before(w.start.Add(w.span))
}

// MemoryLimiter keeps counters in a mutex guarded map. State is lost on
// restart.
type MemoryLimiter struct {
	mu      sync.Mutex
	rules   Rules
	windows map[windowKey]*window
	now     func() time.Time
}

var (
	_ Limiter = (*MemoryLimiter)(nil)
	_ Pruner  = (*MemoryLimiter)(nil)
)

func NewMemoryLimiter(rules Rules) *MemoryLimiter {
	return &MemoryLimiter{
		rules:   rules,
		windows: make(map[windowKey]*window),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Check(_ context.Context, clientKey string, class Class) (Decision, error) {
	rule, err := l.rules.lookup(class)
	if err != nil {
		return Decision{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := windowKey{client: clientKey, class: class}

	w, ok := l.windows[k]
	if !ok || w.expired(now) {
		w = &window{start: now, span: rule.Window}
		l.windows[k] = w
	}
	w.count++

	d := Decision{Allowed: true, Count: w.count, Limit: rule.Max}
	if w.count > rule.Max {
		d.Allowed = false
		d.RetryAfter = w.start.Add(w.span).Sub(now)
	}
	return d, nil
}

// Prune drops every window that has elapsed and returns how many were
// removed.
func (l *MemoryLimiter) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.windows {
		if w.expired(now) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of live windows.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
