package server

import (
	"context"
	"os/signal"
	"syscall"
)

// WithSignal derives a context that is canceled on SIGINT or SIGTERM,
// triggering graceful shutdown of the HTTP server.
func WithSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
