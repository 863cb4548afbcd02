package tts

import (
	"context"
	"math"
	"time"
)

// backoff is the retry schedule for transient failures: exponential
// delay with jitter, a fixed attempt budget. It is a plain value so the
// schedule can be stepped through in tests without sleeping.
type backoff struct {
	attempt    int
	maxRetries int
	baseDelay  time.Duration
}

// next reports whether another attempt is allowed and the delay to wait
// before it. The first call describes the wait after the first failure.
func (b *backoff) next() (time.Duration, bool) {
	if b.attempt >= b.maxRetries {
		return 0, false
	}
	delay := float64(b.baseDelay) * math.Pow(2, float64(b.attempt))

	// Up to 25% jitter to avoid synchronized retries.
	jitter := delay * 0.25 * (0.5 - (float64(time.Now().UnixNano()%1000) / 1000))

	b.attempt++
	return time.Duration(delay + jitter), true
}

// sleepFunc waits out a backoff delay; replaced by a fake in tests.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
