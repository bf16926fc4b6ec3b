// Package retry wraps a fallible, cancelable unit of work with a bounded
// retry policy: per-attempt timeouts, an overall elapsed-time budget, and
// exponential backoff with jitter. The policy knows nothing about the
// operation it runs.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

const (
	DefaultBudget         = 60 * time.Second
	DefaultAttemptTimeout = 30 * time.Second
	DefaultMaxAttempts    = 2
	DefaultBaseDelay      = 2 * time.Second

	maxDelay       = 5 * time.Second
	jitterFraction = 0.10
)

// Clock abstracts time progression so tests can simulate elapsed time
// instead of sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Policy configures the retry behaviour. The zero value is not usable;
// construct via NewPolicy and override fields as needed.
type Policy struct {
	Budget         time.Duration
	AttemptTimeout time.Duration
	MaxAttempts    int
	BaseDelay      time.Duration
	Clock          Clock
}

// NewPolicy returns a policy with the service defaults.
func NewPolicy() Policy {
	return Policy{
		Budget:         DefaultBudget,
		AttemptTimeout: DefaultAttemptTimeout,
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		Clock:          realClock{},
	}
}

// Error aggregates an exhausted run: the last underlying failure, the number
// of attempts made, and the total elapsed time.
type Error struct {
	Attempts int
	Elapsed  time.Duration
	Last     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retry: exhausted after %d attempt(s) in %s: %v", e.Attempts, e.Elapsed.Round(time.Millisecond), e.Last)
}

func (e *Error) Unwrap() error { return e.Last }

// Do runs op until it succeeds, attempts run out, or the projected next
// attempt would exceed the overall budget. Each attempt runs under its own
// timeout; timing out an attempt only abandons waiting for it.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if p.Clock == nil {
		p.Clock = realClock{}
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	start := p.Clock.Now()
	var last error
	attempts := 0

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return &Error{Attempts: attempts, Elapsed: p.Clock.Now().Sub(start), Last: firstErr(last, err)}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
		err := op(attemptCtx)
		cancel()
		attempts = attempt
		if err == nil {
			return nil
		}
		last = err

		if attempt == p.MaxAttempts {
			break
		}
		// Retry only when the projected start of the next attempt still
		// fits the overall budget.
		elapsed := p.Clock.Now().Sub(start)
		if elapsed+p.BaseDelay >= p.Budget {
			break
		}
		p.Clock.Sleep(ctx, backoff(p.BaseDelay, attempt))
	}

	return &Error{Attempts: attempts, Elapsed: p.Clock.Now().Sub(start), Last: last}
}

// backoff computes base*2^(attempt-1) plus up to 10% jitter, capped at 5s.
func backoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			break
		}
	}
	if jitter := time.Duration(rand.Int63n(int64(float64(d)*jitterFraction) + 1)); jitter > 0 {
		d += jitter
	}
	if d > maxDelay {
		d = maxDelay
	}
	return d
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}
