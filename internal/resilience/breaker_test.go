package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(clock *time.Time) *Breaker {
	return NewBreaker("upstream",
		WithThreshold(3),
		WithCooldown(10*time.Second),
		WithBreakerNow(func() time.Time { return *clock }))
}

func transientErr() error {
	return &TransientError{Err: errors.New("upstream timeout"), StatusCode: 503}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Equal(t, BreakerClosed, b.State())
		err := b.Execute(ctx, func(context.Context) error { return transientErr() })
		require.Error(t, err)
	}
	assert.Equal(t, BreakerOpen, b.State())

	err := b.Execute(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestBreakerIgnoresPermanentErrors(t *testing.T) {
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&clock)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = b.Execute(ctx, func(context.Context) error { return errors.New("bad request") })
	}
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerRecoversThroughProbe(t *testing.T) {
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, func(context.Context) error { return transientErr() })
	}
	require.Equal(t, BreakerOpen, b.State())

	clock = clock.Add(11 * time.Second)
	assert.Equal(t, BreakerHalfOpen, b.State())

	require.NoError(t, b.Execute(ctx, func(context.Context) error { return nil }))
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, func(context.Context) error { return transientErr() })
	}
	clock = clock.Add(11 * time.Second)
	require.Equal(t, BreakerHalfOpen, b.State())

	_ = b.Execute(ctx, func(context.Context) error { return transientErr() })
	assert.Equal(t, BreakerOpen, b.State())

	// Still open until another cooldown passes.
	err := b.Execute(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = b.Execute(ctx, func(context.Context) error { return transientErr() })
	}
	require.NoError(t, b.Execute(ctx, func(context.Context) error { return nil }))

	_ = b.Execute(ctx, func(context.Context) error { return transientErr() })
	assert.Equal(t, BreakerClosed, b.State())
}
