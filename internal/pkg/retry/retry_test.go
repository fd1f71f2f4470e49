package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errRate    = errors.New("rate limited")
	errTimeout = errors.New("timed out")
	errOther   = errors.New("boom")
)

func testClassifier(err error) Class {
	switch {
	case errors.Is(err, errRate):
		return ClassRateLimit
	case errors.Is(err, errTimeout):
		return ClassTimeout
	default:
		return ClassOther
	}
}

// stubSleep записывает задержки вместо реального ожидания
func stubSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestPolicy_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		p := NewPolicy(3, time.Second, 2.0, testClassifier)

		calls := 0
		err := p.Do(ctx, func(ctx context.Context, attempt int) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		var delays []time.Duration
		p := NewPolicy(3, time.Second, 2.0, testClassifier)
		p.sleep = stubSleep(&delays)

		calls := 0
		err := p.Do(ctx, func(ctx context.Context, attempt int) error {
			calls++
			if calls < 3 {
				return errOther
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, delays, 2)
	})

	t.Run("exhausts attempts and returns last error", func(t *testing.T) {
		var delays []time.Duration
		p := NewPolicy(3, time.Second, 2.0, testClassifier)
		p.sleep = stubSleep(&delays)

		calls := 0
		err := p.Do(ctx, func(ctx context.Context, attempt int) error {
			calls++
			return errRate
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, errRate)
		assert.Equal(t, 3, calls)
		// Последняя попытка задержку не получает
		assert.Len(t, delays, 2)
	})

	t.Run("rate limit backoff is exponential", func(t *testing.T) {
		var delays []time.Duration
		p := NewPolicy(4, time.Second, 2.0, testClassifier)
		p.sleep = stubSleep(&delays)

		_ = p.Do(ctx, func(ctx context.Context, attempt int) error {
			return errRate
		})

		require.Len(t, delays, 3)
		assert.Equal(t, 1*time.Second, delays[0])
		assert.Equal(t, 2*time.Second, delays[1])
		assert.Equal(t, 4*time.Second, delays[2])
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		p := NewPolicy(5, time.Second, 2.0, testClassifier)

		calls := 0
		err := p.Do(cctx, func(ctx context.Context, attempt int) error {
			calls++
			cancel()
			return errOther
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("attempt index is passed to fn", func(t *testing.T) {
		var delays []time.Duration
		p := NewPolicy(3, time.Second, 2.0, testClassifier)
		p.sleep = stubSleep(&delays)

		var seen []int
		_ = p.Do(ctx, func(ctx context.Context, attempt int) error {
			seen = append(seen, attempt)
			return errOther
		})

		assert.Equal(t, []int{0, 1, 2}, seen)
	})
}

func TestPolicy_DelayFor(t *testing.T) {
	p := NewPolicy(3, time.Second, 3.0, testClassifier)

	t.Run("rate limit grows with attempt", func(t *testing.T) {
		assert.Equal(t, 1*time.Second, p.DelayFor(errRate, 0))
		assert.Equal(t, 3*time.Second, p.DelayFor(errRate, 1))
		assert.Equal(t, 9*time.Second, p.DelayFor(errRate, 2))
	})

	t.Run("timeout uses flat base delay", func(t *testing.T) {
		assert.Equal(t, time.Second, p.DelayFor(errTimeout, 0))
		assert.Equal(t, time.Second, p.DelayFor(errTimeout, 5))
	})

	t.Run("other errors wait half the base", func(t *testing.T) {
		assert.Equal(t, 500*time.Millisecond, p.DelayFor(errOther, 0))
		assert.Equal(t, 500*time.Millisecond, p.DelayFor(errOther, 3))
	})
}

func TestNewPolicy_Defaults(t *testing.T) {
	p := NewPolicy(0, time.Second, 0, nil)

	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, 2.0, p.Multiplier)
	assert.Equal(t, ClassOther, p.Classify(errRate))
}
