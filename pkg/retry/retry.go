// Package retry runs operations with capped exponential backoff. It is used
// at the transport edge (database and broker connections, broker writes);
// business operations never retry.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Common errors
var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config contains retry configuration
type Config struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// InitialInterval is the first backoff interval
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry
	Multiplier float64
	// JitterFactor adds up to ±JitterFactor*interval of noise (0-1)
	JitterFactor float64
}

// DefaultConfig returns 3 retries at 200ms, 400ms, 800ms (±10%)
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// ConnectConfig is tuned for dependency connections at startup
func ConnectConfig(maxRetries int, interval time.Duration) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: interval,
		MaxInterval:     30 * time.Second,
		Multiplier:      1.5,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError stops retrying immediately
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not retryable
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Result describes a finished retry loop
type Result struct {
	// Err is nil on success, the unwrapped permanent error, or a sentinel
	// joined with the last attempt's error
	Err error
	// Attempts counts every call of the operation
	Attempts int
	// TotalDuration includes time spent waiting
	TotalDuration time.Duration
	// LastError is the error of the last attempt
	LastError error
}

// RetryCallback is called before waiting for the next attempt
type RetryCallback func(attempt int, err error, nextInterval time.Duration)

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	config *Config
	wait   func(ctx context.Context, d time.Duration) error
}

// New creates a Retrier, filling zero values from DefaultConfig
func New(config *Config) *Retrier {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	cfg := *config
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = def.Multiplier
	}
	cfg.JitterFactor = math.Max(0, math.Min(1, cfg.JitterFactor))

	return &Retrier{config: &cfg, wait: sleep}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do executes op until it succeeds, fails permanently, runs out of
// retries or ctx ends
func (r *Retrier) Do(ctx context.Context, op Operation) *Result {
	return r.DoWithCallback(ctx, op, nil)
}

// DoWithCallback is Do with a hook before each wait
func (r *Retrier) DoWithCallback(ctx context.Context, op Operation, callback RetryCallback) *Result {
	start := time.Now()
	result := &Result{}
	finish := func(err error) *Result {
		result.Err = err
		result.TotalDuration = time.Since(start)
		return result
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return finish(joinLast(ErrContextCanceled, result.LastError))
		}

		result.Attempts = attempt + 1
		err := op(ctx)
		if err == nil {
			return finish(nil)
		}
		result.LastError = err

		var permErr *PermanentError
		if errors.As(err, &permErr) {
			result.LastError = permErr.Err
			return finish(permErr.Err)
		}

		if attempt >= r.config.MaxRetries {
			return finish(joinLast(ErrMaxRetriesExceeded, err))
		}

		interval := r.backoff(attempt)
		if callback != nil {
			callback(attempt+1, err, interval)
		}
		if r.wait(ctx, interval) != nil {
			return finish(joinLast(ErrContextCanceled, err))
		}
	}
}

func joinLast(sentinel, last error) error {
	if last == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, last)
}

// backoff returns initial*multiplier^attempt with jitter, capped
func (r *Retrier) backoff(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))

	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}

	interval = math.Min(interval, float64(r.config.MaxInterval))
	if interval <= 0 {
		interval = float64(r.config.InitialInterval)
	}
	return time.Duration(interval)
}

// Do is a convenience wrapper returning only the final error
func Do(ctx context.Context, config *Config, op Operation) error {
	return New(config).Do(ctx, op).Err
}
