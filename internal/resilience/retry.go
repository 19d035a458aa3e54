package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retries around a provider call.
type Policy struct {
	// Attempts is the total number of tries. Values below 1 mean one try.
	Attempts int
	// Backoff is the delay before the first retry. It doubles per attempt.
	Backoff time.Duration
	// MaxBackoff caps the delay. Zero means 10s.
	MaxBackoff time.Duration
	// Retryable overrides IsTransient.
	Retryable func(error) bool
}

// Call runs fn through the breaker and retries transient failures with
// jittered exponential backoff. Cancellation stops retrying immediately.
func Call[T any](ctx context.Context, op string, b *Breaker, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := b.Allow(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}
		v, err := fn(ctx)
		b.Record(err)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == attempts-1 {
			break
		}

		delay := backoff(attempt, p)
		zap.L().Warn("resilience: retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func backoff(attempt int, p Policy) time.Duration {
	base := p.Backoff
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	limit := p.MaxBackoff
	if limit <= 0 {
		limit = 10 * time.Second
	}
	d := math.Min(float64(base)*math.Pow(2, float64(attempt)), float64(limit))
	// ±20% jitter.
	d += d * 0.2 * (rand.Float64()*2 - 1)
	return time.Duration(d)
}
