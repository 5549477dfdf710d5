package snapshot

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsrange/restartdiag/internal/infra/metrics"
	"github.com/opsrange/restartdiag/internal/logic/cluster"
)

// Schedule yields the next capture time strictly after a reference time.
// Backed by either a fixed interval or a cron spec.
type Schedule interface {
	Next(after time.Time) time.Time
}

// FixedInterval is the default deep-capture schedule.
type FixedInterval time.Duration

func (f FixedInterval) Next(after time.Time) time.Time {
	return after.Add(time.Duration(f))
}

// Scheduler piggybacks on the poll loop and takes deep diagnostic captures
// of unhealthy workloads on a coarser cadence. Each capture is written into
// an elapsed-time-keyed directory, so the scheduler never contends with the
// poller's timeline file.
type Scheduler struct {
	logger       *slog.Logger
	repo         Repository
	namespace    string
	schedule     Schedule
	dirFor       func(elapsedSeconds int64) string
	queryTimeout time.Duration
	next         time.Time
}

// NewScheduler creates a deep-capture scheduler. dirFor maps an elapsed time
// to the bundle directory for that capture.
func NewScheduler(
	logger *slog.Logger,
	repo Repository,
	namespace string,
	schedule Schedule,
	dirFor func(elapsedSeconds int64) string,
	queryTimeout time.Duration,
) *Scheduler {
	return &Scheduler{
		logger:       logger.With("component", "deep-snapshot"),
		repo:         repo,
		namespace:    namespace,
		schedule:     schedule,
		dirFor:       dirFor,
		queryTimeout: queryTimeout,
		next:         schedule.Next(time.Now()),
	}
}

// ObserveTick implements the poller's tick observer: when a capture is due
// it runs synchronously inside the cooperative loop, bounded by per-query
// timeouts.
func (s *Scheduler) ObserveTick(ctx context.Context, elapsedSeconds int64) {
	now := time.Now()
	if now.Before(s.next) {
		return
	}

	s.next = s.schedule.Next(now)
	s.deepCapture(ctx, elapsedSeconds)
}

// deepCapture writes a shallow pod/event listing plus, for every pod not in
// a healthy running state or with restarts, log and describe payloads.
// Failures are isolated per category and per pod.
func (s *Scheduler) deepCapture(ctx context.Context, elapsedSeconds int64) {
	dir := s.dirFor(elapsedSeconds)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.RecordCaptureFailure("deep")
		s.logger.ErrorContext(ctx, "create deep capture dir failed", "dir", dir, "reason", err)

		return
	}

	metrics.RecordDeepCapture()
	s.logger.InfoContext(ctx, "deep capture", "elapsed", elapsedSeconds, "dir", dir)

	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	pods, err := s.repo.ListPodsQuery(qctx, s.namespace, "")
	cancel()

	if err != nil {
		metrics.RecordCaptureFailure("deep-pods")
		s.logger.WarnContext(ctx, "deep capture pod listing failed", "reason", err)
	} else {
		s.writeJSON(ctx, filepath.Join(dir, "pods.json"), pods)
	}

	qctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
	events, err := s.repo.ListEventsQuery(qctx, s.namespace)
	cancel()

	if err != nil {
		metrics.RecordCaptureFailure("deep-events")
		s.logger.WarnContext(ctx, "deep capture event listing failed", "reason", err)
	} else {
		s.writeJSON(ctx, filepath.Join(dir, "events.json"), events)
	}

	var g errgroup.Group
	g.SetLimit(maxLogFanout)

	for i := range pods {
		pod := pods[i]
		if pod.Healthy() {
			continue
		}

		g.Go(func() error {
			s.capturePod(ctx, dir, pod)

			return nil
		})
	}

	_ = g.Wait()
}

func (s *Scheduler) capturePod(ctx context.Context, dir string, pod cluster.PodInfo) {
	s.writeJSON(ctx, filepath.Join(dir, pod.Name+".describe.json"), pod)

	for _, c := range pod.Containers {
		ref := cluster.PodRef{Namespace: pod.Namespace, Name: pod.Name, Container: c.Name}

		qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		current, err := s.repo.GetPodLogsQuery(qctx, ref, false)
		cancel()

		if err != nil {
			metrics.RecordCaptureFailure("deep-logs")
			s.logger.WarnContext(ctx, "deep log fetch failed",
				"pod", pod.Name,
				"container", c.Name,
				"reason", err,
			)
		} else {
			s.writeFile(ctx, filepath.Join(dir, pod.Name+"."+c.Name+".log"), current)
		}

		if c.RestartCount == 0 {
			continue
		}

		qctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		previous, err := s.repo.GetPodLogsQuery(qctx, ref, true)
		cancel()

		if err != nil {
			metrics.RecordCaptureFailure("deep-logs")
			s.logger.WarnContext(ctx, "deep previous-log fetch failed",
				"pod", pod.Name,
				"container", c.Name,
				"reason", err,
			)

			continue
		}

		s.writeFile(ctx, filepath.Join(dir, pod.Name+"."+c.Name+".prev.log"), previous)
	}
}

func (s *Scheduler) writeJSON(ctx context.Context, path string, v any) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.WarnContext(ctx, "marshal deep payload failed", "path", path, "reason", err)

		return
	}

	s.writeFile(ctx, path, string(raw))
}

func (s *Scheduler) writeFile(ctx context.Context, path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		s.logger.WarnContext(ctx, "write deep payload failed", "path", path, "reason", err)
	}
}
