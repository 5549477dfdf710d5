package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsrange/restartdiag/internal/infra/metrics"
	"github.com/opsrange/restartdiag/internal/logic/cluster"
)

const (
	// maxLogFanout bounds concurrent per-pod log fetches.
	maxLogFanout = 4
	// maxLogBytes truncates each captured log excerpt.
	maxLogBytes = 16 * 1024
)

// Service performs one-shot, read-only, best-effort captures of platform
// state.
type Service struct {
	logger       *slog.Logger
	repo         Repository
	probes       []Probe
	queryTimeout time.Duration
	httpClient   *http.Client
}

// New creates a capture service.
func New(
	logger *slog.Logger,
	repo Repository,
	probes []Probe,
	queryTimeout time.Duration,
) *Service {
	return &Service{
		logger:       logger,
		repo:         repo,
		probes:       probes,
		queryTimeout: queryTimeout,
		httpClient: &http.Client{
			Timeout: queryTimeout,
		},
	}
}

// Capture gathers every declared resource category for the namespace. Each
// category runs under its own timeout and degrades to an entry in
// CaptureErrors on failure; partial results are valid output. No cluster
// state is modified.
func (s *Service) Capture(ctx context.Context, namespace string, mode Mode) *Snapshot {
	logger := s.logger.With("component", "snapshot", "mode", string(mode))

	snap := &Snapshot{
		SchemaVersion: SchemaVersion,
		CapturedAt:    time.Now().UTC(),
		Mode:          mode,
		Namespace:     namespace,
		CaptureErrors: make(map[string]string),
	}

	s.category(ctx, snap, "nodes", func(qctx context.Context) error {
		var err error
		snap.Nodes, err = s.repo.ListNodesQuery(qctx)

		return err
	})

	s.category(ctx, snap, "namespaces", func(qctx context.Context) error {
		var err error
		snap.Namespaces, err = s.repo.ListNamespacesQuery(qctx)

		return err
	})

	s.category(ctx, snap, "pods", func(qctx context.Context) error {
		var err error
		snap.Pods, err = s.repo.ListPodsQuery(qctx, namespace, "")

		return err
	})

	s.category(ctx, snap, "pvcs", func(qctx context.Context) error {
		var err error
		snap.PVCs, err = s.repo.ListPVCsQuery(qctx, namespace)

		return err
	})

	s.category(ctx, snap, "jobs", func(qctx context.Context) error {
		var err error
		snap.Jobs, err = s.repo.ListJobsQuery(qctx, namespace)

		return err
	})

	s.category(ctx, snap, "endpoints", func(qctx context.Context) error {
		var err error
		snap.Endpoints, err = s.repo.ListEndpointsQuery(qctx, namespace)

		return err
	})

	s.category(ctx, snap, "events", func(qctx context.Context) error {
		var err error
		snap.Events, err = s.repo.ListEventsQuery(qctx, namespace)

		return err
	})

	s.category(ctx, snap, "serving", func(qctx context.Context) error {
		var err error
		snap.Serving, err = s.repo.ListServingQuery(qctx, namespace, "")

		return err
	})

	s.category(ctx, snap, "usage", func(qctx context.Context) error {
		var err error
		snap.Usage, err = s.repo.ListPodUsageQuery(qctx, namespace)

		return err
	})

	snap.Probes = s.runProbes(ctx)
	snap.Logs = s.captureLogs(ctx, snap.Pods, mode)

	logger.InfoContext(ctx, "capture complete",
		"pods", len(snap.Pods),
		"events", len(snap.Events),
		"logBundles", len(snap.Logs),
		"failedCategories", len(snap.CaptureErrors),
	)

	return snap
}

// category runs one independent sub-query under its own timeout. A failure
// becomes a marker, never an aborted capture.
func (s *Service) category(ctx context.Context, snap *Snapshot, name string, fn func(context.Context) error) {
	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := fn(qctx); err != nil {
		metrics.RecordCaptureFailure(name)
		s.logger.WarnContext(ctx, "capture category failed",
			"category", name,
			"reason", err,
		)

		snap.CaptureErrors[name] = err.Error()
	}
}

func (s *Service) runProbes(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, 0, len(s.probes))

	for _, probe := range s.probes {
		result := ProbeResult{Name: probe.Name, URL: probe.URL}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe.URL, nil)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)

			continue
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)

			continue
		}

		resp.Body.Close()

		result.StatusCode = resp.StatusCode
		result.Healthy = resp.StatusCode >= 200 && resp.StatusCode < 300
		results = append(results, result)
	}

	return results
}

// captureLogs fetches container log excerpts: unhealthy pods only in
// baseline mode, every pod in final mode. Per-pod failures are isolated.
func (s *Service) captureLogs(ctx context.Context, pods []cluster.PodInfo, mode Mode) []PodLogBundle {
	bundles := make([]PodLogBundle, len(pods))
	include := make([]bool, len(pods))

	var g errgroup.Group
	g.SetLimit(maxLogFanout)

	for i := range pods {
		pod := pods[i]
		if mode != ModeFinal && pod.Healthy() {
			continue
		}

		include[i] = true

		g.Go(func() error {
			bundles[i] = s.podLogs(ctx, pod)

			return nil
		})
	}

	_ = g.Wait()

	out := make([]PodLogBundle, 0, len(pods))

	for i := range bundles {
		if include[i] {
			out = append(out, bundles[i])
		}
	}

	return out
}

func (s *Service) podLogs(ctx context.Context, pod cluster.PodInfo) PodLogBundle {
	bundle := PodLogBundle{
		Namespace: pod.Namespace,
		Pod:       pod.Name,
		Reason:    unhealthyReason(pod),
	}

	for _, c := range pod.Containers {
		entry := ContainerLogs{Container: c.Name}
		ref := cluster.PodRef{Namespace: pod.Namespace, Name: pod.Name, Container: c.Name}

		qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		current, err := s.repo.GetPodLogsQuery(qctx, ref, false)
		cancel()

		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Current = truncate(current, maxLogBytes)
		}

		if c.RestartCount > 0 {
			qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
			previous, err := s.repo.GetPodLogsQuery(qctx, ref, true)
			cancel()

			if err != nil {
				if entry.Error == "" {
					entry.Error = fmt.Sprintf("previous: %v", err)
				}
			} else {
				entry.Previous = truncate(previous, maxLogBytes)
			}
		}

		bundle.Logs = append(bundle.Logs, entry)
	}

	return bundle
}

func unhealthyReason(pod cluster.PodInfo) string {
	if pod.Healthy() {
		return ""
	}

	for _, c := range pod.Containers {
		if c.Reason != "" && !c.Ready {
			return c.Reason
		}
	}

	for _, c := range pod.Inits {
		if c.Reason != "" {
			return "init:" + c.Reason
		}
	}

	if pod.Restarts() > 0 {
		return fmt.Sprintf("restarts=%d", pod.Restarts())
	}

	return pod.Phase
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	// Keep the tail: recent lines carry the failure.
	return "...[truncated]...\n" + text[len(text)-limit:]
}
