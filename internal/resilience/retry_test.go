package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("rate limited"), http.StatusTooManyRequests)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("invalid api key")
	err := Do(context.Background(), fastPolicy(5), "test", func(context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "permanent errors never retry")
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "test", func(context.Context) error {
		calls++
		return Transient(errors.New("upstream 503"), http.StatusServiceUnavailable)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 10, BaseDelay: 50 * time.Millisecond}, "test", func(context.Context) error {
		calls++
		cancel()
		return Transient(errors.New("flaky"), 0)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "cancellation stops the retry loop")
}

func TestDoVal_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(3), "test", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", Transient(errors.New("blip"), 0)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestDoVal_CustomRetryable(t *testing.T) {
	sentinel := errors.New("special")
	p := fastPolicy(3)
	p.Retryable = func(err error) bool { return errors.Is(err, sentinel) }

	calls := 0
	_, err := DoVal(context.Background(), p, "test", func(context.Context) (int, error) {
		calls++
		return 0, sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestPolicyDelay_CappedAndJittered(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}.withDefaults()
	for attempt := 0; attempt < 8; attempt++ {
		d := p.delay(attempt)
		assert.LessOrEqual(t, d, time.Duration(float64(p.MaxDelay)*1.25))
		assert.Positive(t, d)
	}
}
