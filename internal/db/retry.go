package db

import (
	"context"
	"math/rand"
	"time"

	"tourops/internal/domain"
)

// DefaultMaxAttempts bounds optimistic-concurrency retries across the
// capacity and revenue ledgers.
const DefaultMaxAttempts = 3

// WithRetry re-runs fn while it fails with a revision conflict, up to
// maxAttempts, sleeping a jittered backoff between attempts. Any other error
// aborts immediately; the last conflict is surfaced when attempts run out.
func WithRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !domain.IsConflict(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
	return err
}

// backoff doubles per attempt with jitter: 10-30ms, 20-60ms, 40-120ms, ...
func backoff(attempt int) time.Duration {
	base := 10 * time.Millisecond << (attempt - 1)
	return base + time.Duration(rand.Int63n(int64(2*base)))
}
