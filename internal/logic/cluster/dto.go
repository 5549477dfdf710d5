// Package cluster holds the domain-layer view of cluster resources returned
// by the outbound query adapter. Adapters convert API objects into these
// types; the logic layer never imports client-go.
package cluster

import "time"

// PodInfo is the domain view of one pod.
type PodInfo struct {
	Name       string          `json:"name"`
	Namespace  string          `json:"namespace"`
	Phase      string          `json:"phase"`
	Ready      bool            `json:"ready"`
	NodeName   string          `json:"nodeName,omitempty"`
	StartedAt  time.Time       `json:"startedAt,omitempty"`
	Containers []ContainerInfo `json:"containers,omitempty"`
	Inits      []ContainerInfo `json:"initContainers,omitempty"`
}

// ContainerInfo is the domain view of one container status.
type ContainerInfo struct {
	Name         string `json:"name"`
	Ready        bool   `json:"ready"`
	RestartCount int32  `json:"restartCount"`
	// State is "running", "waiting" or "terminated".
	State string `json:"state,omitempty"`
	// Reason is the waiting/terminated reason (CrashLoopBackOff,
	// ImagePullBackOff, Error, Completed, ...).
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Restarts sums container restart counts across the pod.
func (p PodInfo) Restarts() int32 {
	var n int32
	for i := range p.Containers {
		n += p.Containers[i].RestartCount
	}

	for i := range p.Inits {
		n += p.Inits[i].RestartCount
	}

	return n
}

// Healthy reports whether the pod is running with every container ready and
// no recorded restarts. Deep diagnostic captures target unhealthy pods only.
func (p PodInfo) Healthy() bool {
	if p.Phase != "Running" || !p.Ready {
		return false
	}

	return p.Restarts() == 0
}

// NamespaceInfo is the domain view of one namespace.
type NamespaceInfo struct {
	Name  string `json:"name"`
	Phase string `json:"phase"`
}

// NodeInfo is the domain view of one node.
type NodeInfo struct {
	Name          string `json:"name"`
	Ready         bool   `json:"ready"`
	Unschedulable bool   `json:"unschedulable,omitempty"`
	KubeletVer    string `json:"kubeletVersion,omitempty"`
}

// PVCInfo is the domain view of one PersistentVolumeClaim.
type PVCInfo struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Phase      string `json:"phase"`
	Volume     string `json:"volumeName,omitempty"`
	Capacity   string `json:"capacity,omitempty"`
	StorageCls string `json:"storageClass,omitempty"`
}

// JobCondition is one Job condition in domain form.
type JobCondition struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// JobInfo is the domain view of one Job.
type JobInfo struct {
	Name       string         `json:"name"`
	Namespace  string         `json:"namespace"`
	Active     int32          `json:"active"`
	Succeeded  int32          `json:"succeeded"`
	Failed     int32          `json:"failed"`
	Conditions []JobCondition `json:"conditions,omitempty"`
}

// TerminalCondition returns the Complete or Failed condition with status
// True, if the job has reached one.
func (j JobInfo) TerminalCondition() (JobCondition, bool) {
	for i := range j.Conditions {
		c := j.Conditions[i]
		if (c.Type == "Complete" || c.Type == "Failed") && c.Status == "True" {
			return c, true
		}
	}

	return JobCondition{}, false
}

// EndpointInfo is the domain view of one service's endpoints.
type EndpointInfo struct {
	Service        string `json:"service"`
	Namespace      string `json:"namespace"`
	ReadyAddresses int    `json:"readyAddresses"`
	NotReady       int    `json:"notReadyAddresses"`
}

// EventInfo is the domain view of one namespace event.
type EventInfo struct {
	Namespace string    `json:"namespace"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason"`
	Object    string    `json:"object"`
	Message   string    `json:"message"`
	Count     int32     `json:"count"`
	LastSeen  time.Time `json:"lastSeen"`
}

// ServingInfo is the domain view of one model-serving resource
// (InferenceService-style custom resource).
type ServingInfo struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Ready     bool   `json:"ready"`
	Reason    string `json:"reason,omitempty"`
}

// PodUsage is best-effort resource usage from the metrics API.
type PodUsage struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	CPU       string `json:"cpu"`
	Memory    string `json:"memory"`
}

// PodRef identifies a pod container for log retrieval.
type PodRef struct {
	Namespace string
	Name      string
	Container string
}
