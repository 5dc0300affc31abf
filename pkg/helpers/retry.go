package helpers

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry runs fn with exponential backoff, at most maxRetries extra attempts.
// Every attempt gets its own timeout. Errors are always considered retryable
// except context cancellation of the parent.
func Retry(ctx context.Context, maxRetries uint64, timeout time.Duration, fn func(ctx context.Context) error) error {
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithMaxRetries(maxRetries, b)
	b = retry.WithCappedDuration(2*time.Second, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		c := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			c, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := fn(c); err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}
