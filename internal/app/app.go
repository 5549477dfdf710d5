// Package app wires the configuration, adapters and logic services into the
// three diagnostic phases.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/opsrange/restartdiag/internal/adapters/outbound/k8s"
	"github.com/opsrange/restartdiag/internal/config"
	"github.com/opsrange/restartdiag/internal/httpserver"
	"github.com/opsrange/restartdiag/internal/infra/cronparser"
	"github.com/opsrange/restartdiag/internal/logic/analyzer"
	"github.com/opsrange/restartdiag/internal/logic/poller"
	"github.com/opsrange/restartdiag/internal/logic/report"
	"github.com/opsrange/restartdiag/internal/logic/session"
	"github.com/opsrange/restartdiag/internal/logic/snapshot"
)

type App struct {
	logger *slog.Logger
	cfg    *config.Config
	checks *config.ChecksConfig
	store  *session.Store
}

// New validates configuration and prepares the artifact store. Kubernetes
// clients are built per phase: the report phase runs fully offline.
func New(logger *slog.Logger, cfg *config.Config) (*App, error) {
	checks, err := config.LoadChecks(cfg.ChecksFile, cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("load checks: %w", err)
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create diagnostics root: %w", err)
	}

	return &App{
		logger: logger,
		cfg:    cfg,
		checks: checks,
		store:  session.NewStore(logger, cfg.Dir),
	}, nil
}

// RunPreRestart captures the baseline snapshot and records its session.
func (a *App) RunPreRestart(ctx context.Context) (*session.Session, error) {
	repo, err := a.connect()
	if err != nil {
		return nil, err
	}

	sess, err := a.store.Begin(session.PhasePreRestart)
	if err != nil {
		return nil, fmt.Errorf("begin pre-restart session: %w", err)
	}

	capturer := snapshot.New(a.logger, repo, a.probes(), a.cfg.QueryTimeout)
	snap := capturer.Capture(ctx, a.cfg.Namespace, snapshot.ModeBaseline)

	if err := a.store.WriteJSON(sess.SnapshotPath(), snap); err != nil {
		return nil, fmt.Errorf("persist baseline snapshot: %w", err)
	}

	if err := a.store.Finish(sess); err != nil {
		return nil, fmt.Errorf("finish pre-restart session: %w", err)
	}

	a.logger.InfoContext(ctx, "baseline captured", "session", sess.ID, "dir", sess.Dir)

	return sess, nil
}

// RunPostRestart monitors the cluster for the configured window: poller and
// deep-snapshot scheduler share one cooperative loop, an HTTP server exposes
// health and metrics meanwhile, and a final comprehensive snapshot closes
// the session — also on cancellation.
func (a *App) RunPostRestart(ctx context.Context) (*session.Session, error) {
	repo, err := a.connect()
	if err != nil {
		return nil, err
	}

	sess, err := a.store.Begin(session.PhasePostRestart)
	if err != nil {
		return nil, fmt.Errorf("begin post-restart session: %w", err)
	}

	timelineFile, err := session.CreateTimelineFile(sess.TimelinePath())
	if err != nil {
		return nil, fmt.Errorf("create timeline: %w", err)
	}

	capturer := snapshot.New(a.logger, repo, a.probes(), a.cfg.QueryTimeout)

	schedule, err := a.snapshotSchedule()
	if err != nil {
		return nil, err
	}

	scheduler := snapshot.NewScheduler(
		a.logger,
		repo,
		a.cfg.Namespace,
		schedule,
		sess.DeepDir,
		a.cfg.QueryTimeout,
	)

	monitor := poller.New(
		a.logger,
		repo,
		a.checks.Checks,
		a.cfg.PollInterval,
		a.cfg.QueryTimeout,
		poller.WithSink(timelineFile),
		poller.WithTickObserver(scheduler),
	)

	if a.cfg.HTTPEnabled {
		srv := httpserver.New(a.logger, a.cfg.HTTPPort, monitor)
		srv.Start(ctx)

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.WarnContext(ctx, "http server shutdown failed", "reason", err)
			}
		}()
	}

	_, runErr := monitor.Run(ctx, a.cfg.MonitorDuration)

	if err := timelineFile.Close(); err != nil {
		a.logger.ErrorContext(ctx, "close timeline failed", "reason", err)
	}

	// Final comprehensive capture, best-effort even after an interrupt.
	finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
	defer cancel()

	snap := capturer.Capture(finalCtx, a.cfg.Namespace, snapshot.ModeFinal)
	if err := a.store.WriteJSON(sess.SnapshotPath(), snap); err != nil {
		a.logger.ErrorContext(ctx, "persist final snapshot failed", "reason", err)
	}

	if err := a.store.Finish(sess); err != nil {
		return nil, fmt.Errorf("finish post-restart session: %w", err)
	}

	if runErr != nil {
		return sess, fmt.Errorf("monitoring loop: %w", runErr)
	}

	a.logger.InfoContext(ctx, "monitoring complete", "session", sess.ID, "dir", sess.Dir)

	return sess, nil
}

// RunReport correlates the two prior phases into the rendered report. It
// fails fast with a missing-phase-data error, writing nothing, when either
// phase's artifacts cannot be resolved.
func (a *App) RunReport(ctx context.Context) ([]byte, string, error) {
	preSess, err := a.store.Latest(session.PhasePreRestart)
	if err != nil {
		return nil, "", err
	}

	postSess, err := a.store.Latest(session.PhasePostRestart)
	if err != nil {
		return nil, "", err
	}

	timeline, err := session.LoadTimeline(postSess.TimelinePath())
	if err != nil {
		return nil, "", fmt.Errorf("%w: load timeline: %w", session.ErrMissingPhaseData, err)
	}

	var baseline, final snapshot.Snapshot

	if err := a.store.ReadJSON(preSess.SnapshotPath(), &baseline); err != nil {
		a.logger.WarnContext(ctx, "baseline snapshot unreadable, report degrades", "reason", err)
	}

	if err := a.store.ReadJSON(postSess.SnapshotPath(), &final); err != nil {
		a.logger.WarnContext(ctx, "final snapshot unreadable, report degrades", "reason", err)
	}

	findings := analyzer.Analyze(a.checks.Checks, timeline, &final, a.rules())

	rep := report.Build(
		a.checks.Checks,
		timeline,
		&baseline,
		&final,
		findings,
		preSess.StartedAt,
		postSess.StartedAt,
		report.Artifacts{
			Root:        a.store.Root(),
			BaselineDir: preSess.Dir,
			MonitorDir:  postSess.Dir,
		},
	)

	rendered, err := report.Render(rep)
	if err != nil {
		return nil, "", fmt.Errorf("render report: %w", err)
	}

	sess, err := a.store.Begin(session.PhaseReport)
	if err != nil {
		return nil, "", fmt.Errorf("begin report session: %w", err)
	}

	if err := os.WriteFile(sess.ReportPath(), rendered, 0o644); err != nil {
		return nil, "", fmt.Errorf("write report: %w", err)
	}

	if err := a.store.WriteJSON(sess.Dir+"/findings.json", findings); err != nil {
		a.logger.WarnContext(ctx, "persist findings failed", "reason", err)
	}

	if err := a.store.Finish(sess); err != nil {
		return nil, "", fmt.Errorf("finish report session: %w", err)
	}

	return rendered, sess.ReportPath(), nil
}

// rules merges env-level thresholds with any overrides in the checks file.
func (a *App) rules() analyzer.Rules {
	rules := analyzer.Rules{
		StorageBoundThreshold: a.cfg.StorageBoundThreshold,
		LateThreshold:         a.cfg.LateThreshold,
	}

	if a.checks.Rules.StorageBoundThresholdSeconds > 0 {
		rules.StorageBoundThreshold = time.Duration(a.checks.Rules.StorageBoundThresholdSeconds) * time.Second
	}

	if a.checks.Rules.LateThresholdSeconds > 0 {
		rules.LateThreshold = time.Duration(a.checks.Rules.LateThresholdSeconds) * time.Second
	}

	return rules
}

func (a *App) probes() []snapshot.Probe {
	probes := make([]snapshot.Probe, 0, len(a.checks.Probes))
	for _, p := range a.checks.Probes {
		probes = append(probes, snapshot.Probe{Name: p.Name, URL: p.URL})
	}

	return probes
}

func (a *App) snapshotSchedule() (snapshot.Schedule, error) {
	if a.cfg.SnapshotSchedule == "" {
		return snapshot.FixedInterval(a.cfg.SnapshotInterval), nil
	}

	schedule, err := cronparser.Parse(a.cfg.SnapshotSchedule)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	return schedule, nil
}

// connect builds the Kubernetes clients for the online phases.
func (a *App) connect() (*k8s.Adapter, error) {
	kubeConfig, err := clientcmd.BuildConfigFromFlags(a.cfg.KubeMaster, a.cfg.KubeConfig)
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	metricsClientset, err := metricsv.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create metrics clientset: %w", err)
	}

	return k8s.New(
		a.logger,
		clientset,
		dynamicClient,
		metricsClientset,
		schema.GroupVersionResource{
			Group:    a.checks.Serving.Group,
			Version:  a.checks.Serving.Version,
			Resource: a.checks.Serving.Resource,
		},
	), nil
}
