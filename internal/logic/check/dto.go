package check

import "time"

// Kind selects the evaluator used for a component check.
type Kind string

const (
	// KindNamespace reports namespace presence; with a selector it degrades
	// to a pod-readiness ratio inside that namespace.
	KindNamespace Kind = "namespace"
	// KindPodReady reports the ready/total ratio of pods matching a selector.
	KindPodReady Kind = "pod-ready"
	// KindPVC reports a PersistentVolumeClaim phase verbatim.
	KindPVC Kind = "pvc"
	// KindJob reports a Job's condition, terminal type/reason once observed.
	KindJob Kind = "job"
	// KindServing reports the ready ratio of model-serving resources
	// (InferenceService-style custom resources).
	KindServing Kind = "serving"
)

// ComponentCheck declares one dependency or workload to sample every poll tick.
// Checks are configuration: immutable once the poller starts.
type ComponentCheck struct {
	ID          string   `yaml:"id" json:"id"`
	DisplayName string   `yaml:"displayName" json:"displayName"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Namespace   string   `yaml:"namespace" json:"namespace"`
	// Selector is a label selector for pod-ready, serving and namespace checks.
	Selector string `yaml:"selector,omitempty" json:"selector,omitempty"`
	// Name is the object name for pvc and job checks.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// DependsOn lists upstream check IDs this component requires at startup.
	// The declared edges must form a DAG; cycles are a configuration error.
	DependsOn []string `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
	Critical  bool     `yaml:"critical,omitempty" json:"critical,omitempty"`
}

// StatusSample is one observation of one component at one poll tick.
type StatusSample struct {
	Timestamp      time.Time `json:"timestamp"`
	ElapsedSeconds int64     `json:"elapsedSeconds"`
	ComponentID    string    `json:"componentId"`
	Status         Status    `json:"status"`
	Detail         string    `json:"detail,omitempty"`
}
