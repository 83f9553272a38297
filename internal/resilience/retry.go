// Package resilience wraps outbound API calls with bounded retry. Producers
// call third-party services (Anthropic, Notion, Salesforce) whose transient
// failures should not fail a whole run.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior with exponential backoff and jitter.
type Policy struct {
	// Attempts is the total number of tries, including the first. 1 means
	// no retries.
	Attempts int
	// BaseDelay is the sleep before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// Retryable overrides the transient-error check when set.
	Retryable func(error) bool
}

// DefaultPolicy suits interactive API calls.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  15 * time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 15 * time.Second
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	return p
}

// delay doubles per attempt with ±25% jitter, capped at MaxDelay.
func (p Policy) delay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	d = min(d, float64(p.MaxDelay))
	d *= 0.75 + rand.Float64()*0.5
	return time.Duration(d)
}

// Do runs fn until it succeeds, exhausts the policy, or hits a
// non-transient error. Context cancellation stops retries immediately and
// returns the last error.
func Do(ctx context.Context, p Policy, op string, fn func(context.Context) error) error {
	_, err := DoVal(ctx, p, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for calls that return a value.
func DoVal[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !p.Retryable(err) {
			return zero, lastErr
		}
		if attempt == p.Attempts-1 {
			break
		}

		d := p.delay(attempt)
		zap.L().Debug("retrying after transient error",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", d),
			zap.Error(err))

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
