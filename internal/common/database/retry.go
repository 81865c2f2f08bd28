package database

import (
	"context"
	"fmt"
	"time"

	"risk-workers/internal/common/logger"
)

// ConnectPolicy bounds how long startup waits for a backing service.
type ConnectPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultConnectPolicy waits roughly half a minute before giving up.
var DefaultConnectPolicy = ConnectPolicy{Attempts: 5, Delay: 2 * time.Second}

func (p ConnectPolicy) wait(ctx context.Context, log logger.Logger, name string, ping func(context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	return Retry(ctx, attempts, p.Delay, log, name, ping)
}

// Retry runs op up to attempts times, doubling the delay after each failure.
// It gives up early when ctx is cancelled.
func Retry(ctx context.Context, attempts int, initialDelay time.Duration, log logger.Logger, name string, op func(context.Context) error) error {
	var err error
	delay := initialDelay

	for i := 0; i < attempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		log.Warn(name+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxAttempts": attempts,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
}
