package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Logging reports every outbound send to lg at debug level, and failed sends
// at warn level.
func Logging(lg *zap.Logger) Interceptor {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, payload []byte) error {
			start := time.Now()
			err := next(ctx, payload)
			if err != nil {
				lg.Warn("send failed",
					zap.Int("bytes", len(payload)),
					zap.Duration("took", time.Since(start)),
					zap.Error(err))
				return err
			}
			lg.Debug("sent",
				zap.Int("bytes", len(payload)),
				zap.Duration("took", time.Since(start)))
			return nil
		}
	}
}
