package middleware

import (
	"context"
	"fmt"
	"time"
)

// Timeout bounds each individual send. A transport wedged longer than d fails
// the send; the goroutine running it is left to finish on its own.
func Timeout(d time.Duration) Interceptor {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, payload []byte) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- next(ctx, payload)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return fmt.Errorf("send timed out after %s: %w", d, ctx.Err())
			}
		}
	}
}
