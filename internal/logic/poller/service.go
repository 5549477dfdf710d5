package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsrange/restartdiag/internal/infra/metrics"
	"github.com/opsrange/restartdiag/internal/logic/check"
)

// maxTickFanout bounds concurrent evaluations within one tick.
const maxTickFanout = 8

// Service drives the fixed-cadence sampling loop over the declared component
// checks. A single goroutine owns the loop and the timeline; the only
// concurrency is the bounded intra-tick fan-out, joined before the tick is
// appended.
type Service struct {
	logger       *slog.Logger
	repo         Repository
	checks       []check.ComponentCheck
	interval     time.Duration
	queryTimeout time.Duration
	sink         SampleSink
	observer     TickObserver
	ready        chan struct{}
}

// Option configures optional poller collaborators.
type Option func(*Service)

// WithSink attaches a persistence sink receiving every completed tick.
func WithSink(sink SampleSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithTickObserver attaches an observer called after every completed tick.
func WithTickObserver(o TickObserver) Option {
	return func(s *Service) { s.observer = o }
}

// New creates a poller over a fixed check set.
func New(
	logger *slog.Logger,
	repo Repository,
	checks []check.ComponentCheck,
	interval time.Duration,
	queryTimeout time.Duration,
	opts ...Option,
) *Service {
	s := &Service{
		logger:       logger,
		repo:         repo,
		checks:       checks,
		interval:     interval,
		queryTimeout: queryTimeout,
		ready:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ready is closed once the first tick has been recorded.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Run polls every check on the configured cadence until the window elapses
// or ctx is cancelled. The collected timeline is returned in both cases:
// cancellation flushes everything recorded so far, nothing is discarded.
func (s *Service) Run(ctx context.Context, window time.Duration) (*check.Timeline, error) {
	logger := s.logger.With("component", "poller")

	start := time.Now()
	timeline := check.NewTimeline()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(window)
	defer deadline.Stop()

	logger.InfoContext(ctx, "starting monitoring loop",
		"checks", len(s.checks),
		"interval", s.interval,
		"window", window,
	)

	first := true

	for {
		elapsed := int64(time.Since(start) / time.Second)

		samples := s.tick(ctx, elapsed)
		if err := timeline.Append(samples); err != nil {
			// The loop is the single producer; a violation here is a bug.
			return timeline, fmt.Errorf("append tick: %w", err)
		}

		if s.sink != nil {
			if err := s.sink.Append(samples); err != nil {
				logger.ErrorContext(ctx, "persist tick failed", "reason", err)
			}
		}

		if s.observer != nil {
			s.observer.ObserveTick(ctx, elapsed)
		}

		if first {
			first = false

			close(s.ready)
		}

		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "monitoring cancelled, flushing timeline",
				"samples", timeline.Len(),
				"elapsed", elapsed,
			)

			return timeline, nil
		case <-deadline.C:
			logger.InfoContext(ctx, "monitoring window elapsed",
				"samples", timeline.Len(),
			)

			return timeline, nil
		case <-ticker.C:
		}
	}
}

// tick evaluates every check concurrently and joins all results. Samples are
// returned in declared check order and share one elapsed time; failures and
// timeouts surface as StatusUnknown, never as an aborted tick.
func (s *Service) tick(ctx context.Context, elapsed int64) []check.StatusSample {
	now := time.Now()
	samples := make([]check.StatusSample, len(s.checks))

	var g errgroup.Group
	g.SetLimit(maxTickFanout)

	for i := range s.checks {
		g.Go(func() error {
			c := s.checks[i]

			qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
			defer cancel()

			status, detail := s.evaluate(qctx, c)

			if status.Kind == check.StatusUnknown {
				metrics.RecordQueryFailure(c.ID)
				s.logger.DebugContext(ctx, "check degraded to unknown",
					"check", c.ID,
					"detail", detail,
				)
			}

			metrics.RecordSample(c.ID, string(status.Kind))

			samples[i] = check.StatusSample{
				Timestamp:      now,
				ElapsedSeconds: elapsed,
				ComponentID:    c.ID,
				Status:         status,
				Detail:         detail,
			}

			return nil
		})
	}

	// Goroutines only write their own slot and never return errors.
	_ = g.Wait()

	return samples
}
