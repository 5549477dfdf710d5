package config

import "time"

// Env key constants. All diagnostic configuration env vars use RESTARTDIAG_
// prefix; duration values support explicit units (e.g. 5m, 40s, 2h).
// CLI flags take precedence over env vars.

// Root directory for per-incident diagnostic artifacts.
const envKeyDir = "RESTARTDIAG_DIR"

// Path to kubeconfig file. If unset, KUBECONFIG is used as fallback.
const envKeyKubeConfig = "RESTARTDIAG_KUBECONFIG"

// Kubernetes API server URL. If unset, KUBERNETES_MASTER is used as fallback.
const envKeyKubeMaster = "RESTARTDIAG_KUBE_MASTER"

// Log level: debug, info, warn, error.
const envKeyLogLevel = "RESTARTDIAG_LOG_LEVEL"

// Log format: json or text.
const envKeyLogFormat = "RESTARTDIAG_LOG_FORMAT"

// Platform namespace monitored by default.
const envKeyNamespace = "RESTARTDIAG_NAMESPACE"

// Path to the YAML file declaring component checks, dependency edges and
// rule thresholds. If unset, a compiled-in default set is used.
const envKeyChecksFile = "RESTARTDIAG_CHECKS_FILE"

// Port for the health/metrics HTTP server during the monitoring window.
const envKeyHTTPPort = "RESTARTDIAG_HTTP_PORT"

// Enable/disable the monitoring-window HTTP server: true or false.
const envKeyHTTPEnabled = "RESTARTDIAG_HTTP_ENABLED"

// Poll interval for component checks. Units: s, m (e.g. 10s).
const (
	envKeyPollInterval = "RESTARTDIAG_POLL_INTERVAL"
	envMinPollInterval = time.Second
)

// Total post-restart monitoring window. Units: s, m, h (e.g. 10m).
const (
	envKeyMonitorDuration = "RESTARTDIAG_MONITOR_DURATION"
	envMinMonitorDuration = 30 * time.Second
)

// Deep diagnostic snapshot interval. Units: s, m (e.g. 60s). Must be coarser
// than the poll interval.
const (
	envKeySnapshotInterval = "RESTARTDIAG_SNAPSHOT_INTERVAL"
	envMinSnapshotInterval = 10 * time.Second
)

// Optional cron spec for deep snapshots (e.g. "*/2 * * * *"); overrides
// the fixed snapshot interval when set.
const envKeySnapshotSchedule = "RESTARTDIAG_SNAPSHOT_SCHEDULE"

// Per-query timeout applied to every cluster query and log fetch.
const (
	envKeyQueryTimeout = "RESTARTDIAG_QUERY_TIMEOUT"
	envMinQueryTimeout = time.Second
)

// Storage-timing rule: PVC bound-time threshold. Units: s, m (e.g. 60s).
const envKeyStorageBoundThreshold = "RESTARTDIAG_STORAGE_BOUND_THRESHOLD"

// Dependency-race rule: a component whose first READY comes after this
// threshold counts as late. Units: s, m (e.g. 300s).
const envKeyLateThreshold = "RESTARTDIAG_LATE_THRESHOLD"

// Standard k8s env keys used as fallback when RESTARTDIAG_* are unset.
const (
	envKeyKubeConfigFallback = "KUBECONFIG"
	envKeyKubeMasterFallback = "KUBERNETES_MASTER"
)
