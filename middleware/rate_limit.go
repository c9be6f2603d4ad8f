package middleware

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimit caps outbound sends with a token bucket of r payloads per second
// and the given burst. A send that finds the bucket empty waits for a token
// or fails when ctx expires first.
func RateLimit(r float64, burst int) Interceptor {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, payload []byte) error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			return next(ctx, payload)
		}
	}
}
