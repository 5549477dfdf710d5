package shutdown_test

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/opsrange/restartdiag/internal/infra/shutdown"
)

func TestHandleSignals(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("signal cancels the run context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		signals := make(chan os.Signal, 1)
		signals <- syscall.SIGTERM

		done := make(chan struct{})

		go func() {
			shutdown.HandleSignals(ctx, logger, signals, cancel)
			close(done)
		}()

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context not cancelled after signal")
		}

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler did not return")
		}
	})

	t.Run("context cancellation stops the handler without a signal", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())

		signals := make(chan os.Signal, 1)
		done := make(chan struct{})

		go func() {
			shutdown.HandleSignals(ctx, logger, signals, cancel)
			close(done)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler did not return after cancellation")
		}
	})
}
