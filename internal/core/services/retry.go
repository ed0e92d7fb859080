package services

import (
	"context"
	"time"

	"github.com/quillon/docuchat/internal/logger"
)

// Bounded retry policy for slow external calls.
const (
	maxAttempts = 3
	baseBackoff = 200 * time.Millisecond
)

// withRetry runs fn up to maxAttempts times, backing off between attempts.
// retryable decides whether an error is worth another attempt; a nil
// retryable retries everything. Context cancellation stops immediately.
func withRetry(ctx context.Context, op string, retryable func(error) bool, fn func() error) error {
	var err error
	backoff := baseBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		logger.Warn("%s failed (attempt %d/%d): %v", op, attempt, maxAttempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff += baseBackoff
	}
	return err
}
