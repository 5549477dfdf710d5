package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Notify returns a channel receiving SIGTERM and SIGINT. Call it first in
// main(), before any other initialization, so an early interrupt during a
// monitoring window is never lost.
func Notify() <-chan os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	return signals
}

// HandleSignals cancels the run context on the first termination signal.
// The monitoring loop reacts by flushing the timeline collected so far and
// taking one best-effort final snapshot; nothing is discarded.
func HandleSignals(ctx context.Context, logger *slog.Logger, signals <-chan os.Signal, cancel func()) {
	select {
	case <-ctx.Done():
		return
	case sig := <-signals:
		logger.InfoContext(ctx, "received termination signal, stopping monitoring", "signal", sig.String())
		cancel()
	}
}
