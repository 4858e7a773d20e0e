package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastRetrier(maxRetries int) *Retrier {
	r := New(&Config{MaxRetries: maxRetries, InitialInterval: time.Millisecond, JitterFactor: 0})
	r.wait = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return r
}

func TestRetrier_SucceedsFirstTime(t *testing.T) {
	calls := 0
	result := fastRetrier(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, result.Err)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var callbacks []int
	result := fastRetrier(3).DoWithCallback(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		callbacks = append(callbacks, attempt)
	})

	assert.NoError(t, result.Err)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []int{1, 2}, callbacks)
}

func TestRetrier_ExhaustsRetries(t *testing.T) {
	boom := errors.New("boom")
	result := fastRetrier(2).Do(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, result.Err, ErrMaxRetriesExceeded)
	assert.ErrorIs(t, result.Err, boom)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, boom, result.LastError)
}

func TestRetrier_PermanentStopsImmediately(t *testing.T) {
	boom := errors.New("bad request")
	calls := 0
	result := fastRetrier(5).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(boom)
	})

	assert.Equal(t, boom, result.Err)
	assert.Equal(t, 1, calls)
}

func TestRetrier_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	result := fastRetrier(5).Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	assert.ErrorIs(t, result.Err, ErrContextCanceled)
	assert.Equal(t, 1, calls)
}

func TestRetrier_Backoff(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
	})

	assert.Equal(t, 100*time.Millisecond, r.backoff(0))
	assert.Equal(t, 200*time.Millisecond, r.backoff(1))
	assert.Equal(t, 400*time.Millisecond, r.backoff(2))
	assert.Equal(t, time.Second, r.backoff(8))
}

func TestRetrier_BackoffJitterBounds(t *testing.T) {
	r := New(&Config{InitialInterval: 100 * time.Millisecond, Multiplier: 2, JitterFactor: 0.5})
	for i := 0; i < 100; i++ {
		d := r.backoff(0)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(&Config{MaxRetries: -1, JitterFactor: 3})
	assert.Equal(t, 0, r.config.MaxRetries)
	assert.Equal(t, DefaultConfig().InitialInterval, r.config.InitialInterval)
	assert.Equal(t, 1.0, r.config.JitterFactor)
}
