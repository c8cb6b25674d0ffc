// Package limiter counts register and login attempts per client within a
// fixed window and rejects once the configured maximum is exceeded.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Class is the endpoint class an attempt is counted against.
type Class string

const (
	ClassRegister Class = "register"
	ClassLogin    Class = "login"
)

var (
	ErrUnknownClass       = errors.New("limiter: unknown endpoint class")
	ErrBackendUnavailable = errors.New("limiter: backend unavailable")
)

// Rule bounds the number of attempts allowed per window.
type Rule struct {
	Max    int
	Window time.Duration
}

func (r Rule) validate() error {
	if r.Max <= 0 || r.Window <= 0 {
		return fmt.Errorf("limiter: invalid rule max=%d window=%s", r.Max, r.Window)
	}
	return nil
}

// Rules maps each endpoint class to its rule.
type Rules map[Class]Rule

// DefaultRules allows 3 registrations per hour and 5 logins per 15 minutes.
func DefaultRules() Rules {
	return Rules{
		ClassRegister: {Max: 3, Window: 60 * time.Minute},
		ClassLogin:    {Max: 5, Window: 15 * time.Minute},
	}
}

// Validate reports the first invalid rule.
func (rs Rules) Validate() error {
	for class, r := range rs {
		if err := r.validate(); err != nil {
			return fmt.Errorf("%s: %w", class, err)
		}
	}
	return nil
}

func (rs Rules) lookup(class Class) (Rule, error) {
	r, ok := rs[class]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return r, nil
}

// Decision is the outcome of a single Check.
type Decision struct {
	Allowed    bool
	Count      int
	Limit      int
	RetryAfter time.Duration // zero when allowed
}

// Limiter records an attempt and decides whether it may proceed. The attempt
// is counted before the comparison, so the (Max+1)th attempt in a window is
// the first one rejected.
type Limiter interface {
	Check(ctx context.Context, clientKey string, class Class) (Decision, error)
}

// Pruner is implemented by limiters that keep state in process memory.
type Pruner interface {
	Prune(now time.Time) int
}

// RetryAfterSeconds rounds a wait up to whole seconds for a Retry-After
// header, never below one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}
