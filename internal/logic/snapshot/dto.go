package snapshot

import (
	"time"

	"github.com/opsrange/restartdiag/internal/logic/cluster"
)

const SchemaVersion = "v1"

// Mode selects how much log detail a capture gathers.
type Mode string

const (
	// ModeBaseline captures logs for unhealthy pods only.
	ModeBaseline Mode = "baseline"
	// ModeFinal captures logs for every pod, healthy or not, to give the
	// analyzer a complete final-state baseline.
	ModeFinal Mode = "final"
)

// Probe is one in-cluster HTTP health endpoint to hit during capture.
type Probe struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProbeResult is the outcome of one health-endpoint probe.
type ProbeResult struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode,omitempty"`
	Healthy    bool   `json:"healthy"`
	Error      string `json:"error,omitempty"`
}

// ContainerLogs holds current and previous log excerpts for one container.
// A fetch failure is recorded in Error instead of aborting the bundle.
type ContainerLogs struct {
	Container string `json:"container"`
	Current   string `json:"current,omitempty"`
	Previous  string `json:"previous,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PodLogBundle groups the log excerpts captured for one pod.
type PodLogBundle struct {
	Namespace string          `json:"namespace"`
	Pod       string          `json:"pod"`
	Reason    string          `json:"reason,omitempty"`
	Logs      []ContainerLogs `json:"logs"`
}

// Snapshot is a point-in-time, best-effort capture bundle. Every category is
// queried independently: a failure is recorded in CaptureErrors under the
// category name and the rest of the bundle stays valid.
type Snapshot struct {
	SchemaVersion string    `json:"schemaVersion"`
	CapturedAt    time.Time `json:"capturedAt"`
	Mode          Mode      `json:"mode"`
	Namespace     string    `json:"namespace"`

	Nodes      []cluster.NodeInfo      `json:"nodes,omitempty"`
	Namespaces []cluster.NamespaceInfo `json:"namespaces,omitempty"`
	Pods       []cluster.PodInfo       `json:"pods,omitempty"`
	PVCs       []cluster.PVCInfo       `json:"pvcs,omitempty"`
	Jobs       []cluster.JobInfo       `json:"jobs,omitempty"`
	Endpoints  []cluster.EndpointInfo  `json:"endpoints,omitempty"`
	Events     []cluster.EventInfo     `json:"events,omitempty"`
	Serving    []cluster.ServingInfo   `json:"serving,omitempty"`
	Usage      []cluster.PodUsage      `json:"usage,omitempty"`
	Probes     []ProbeResult           `json:"probes,omitempty"`
	Logs       []PodLogBundle          `json:"logs,omitempty"`

	CaptureErrors map[string]string `json:"captureErrors,omitempty"`
}
