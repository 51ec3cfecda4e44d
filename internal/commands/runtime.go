package commands

import (
	"context"
	"time"
)

// DefaultCommandTimeout bounds a single command execution. Merges of owners
// with many dependent records are the slowest commands.
const DefaultCommandTimeout = 30 * time.Second

// EnsureContext returns a non-nil context.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
