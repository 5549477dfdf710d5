// Package report assembles and renders the diagnostic report document.
// Rendering is deterministic: everything in the output derives from the
// phase artifacts, never from the clock at render time, so identical inputs
// produce byte-identical reports.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/opsrange/restartdiag/internal/logic/analyzer"
	"github.com/opsrange/restartdiag/internal/logic/check"
	"github.com/opsrange/restartdiag/internal/logic/snapshot"
)

// Artifacts points at the raw phase artifacts for manual follow-up.
type Artifacts struct {
	Root        string `json:"root"`
	BaselineDir string `json:"baselineDir,omitempty"`
	MonitorDir  string `json:"monitorDir,omitempty"`
}

// ComponentRow is one line of the time-to-ready table.
type ComponentRow struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	TimeToReady string `json:"timeToReady"`
	LastStatus  string `json:"lastStatus"`
}

// CaptureError is one failed snapshot category, sorted for stable output.
type CaptureError struct {
	Category string `json:"category"`
	Error    string `json:"error"`
}

// PodRow is one line of the detailed pod status section.
type PodRow struct {
	Name     string `json:"name"`
	Phase    string `json:"phase"`
	Ready    string `json:"ready"`
	Restarts int32  `json:"restarts"`
	Reason   string `json:"reason,omitempty"`
}

// DiagnosticReport aggregates everything the rendered document shows.
type DiagnosticReport struct {
	Namespace          string                 `json:"namespace"`
	BaselineCapturedAt time.Time              `json:"baselineCapturedAt,omitempty"`
	MonitoringStarted  time.Time              `json:"monitoringStarted,omitempty"`
	WindowSeconds      int64                  `json:"windowSeconds"`
	ReadyCount         int                    `json:"readyCount"`
	TotalChecks        int                    `json:"totalChecks"`
	Rows               []ComponentRow         `json:"rows"`
	Counts             analyzer.FailureCounts `json:"counts"`
	Findings           []analyzer.Finding     `json:"findings"`
	TopSeverity        analyzer.Severity      `json:"topSeverity,omitempty"`
	Pods               []PodRow               `json:"pods"`
	CaptureErrors      []CaptureError         `json:"captureErrors,omitempty"`
	Artifacts          Artifacts              `json:"artifacts"`
}

// Build derives the report from the finalized phase artifacts. Any absent
// input degrades the matching section to a placeholder instead of failing.
func Build(
	checks []check.ComponentCheck,
	timeline *check.Timeline,
	baseline *snapshot.Snapshot,
	final *snapshot.Snapshot,
	findings []analyzer.Finding,
	baselineStarted time.Time,
	monitoringStarted time.Time,
	artifacts Artifacts,
) *DiagnosticReport {
	r := &DiagnosticReport{
		BaselineCapturedAt: baselineStarted,
		MonitoringStarted:  monitoringStarted,
		Findings:           findings,
		Artifacts:          artifacts,
		TotalChecks:        len(checks),
	}

	for _, f := range findings {
		if rank(f.Severity) > rank(r.TopSeverity) {
			r.TopSeverity = f.Severity
		}
	}

	if timeline != nil {
		r.WindowSeconds = analyzer.Window(timeline)
		readyTimes := analyzer.DeriveReadyTimes(timeline)

		for i := range checks {
			c := checks[i]
			rt := readyTimes[c.ID]

			row := ComponentRow{
				ID:          c.ID,
				DisplayName: c.DisplayName,
				LastStatus:  lastStatus(timeline, c.ID),
			}

			if rt.Reached {
				r.ReadyCount++
				row.TimeToReady = fmt.Sprintf("%ds", rt.Seconds)
			} else {
				row.TimeToReady = fmt.Sprintf("not reached within %ds window", r.WindowSeconds)
			}

			r.Rows = append(r.Rows, row)
		}
	}

	if final != nil {
		r.Namespace = final.Namespace
		r.Counts = analyzer.CountFailures(final.Pods)

		for i := range final.Pods {
			pod := final.Pods[i]

			ready := "no"
			if pod.Ready {
				ready = "yes"
			}

			reason := ""
			for _, c := range pod.Containers {
				if !c.Ready && c.Reason != "" {
					reason = c.Reason

					break
				}
			}

			r.Pods = append(r.Pods, PodRow{
				Name:     pod.Name,
				Phase:    pod.Phase,
				Ready:    ready,
				Restarts: pod.Restarts(),
				Reason:   reason,
			})
		}

		for category, msg := range final.CaptureErrors {
			r.CaptureErrors = append(r.CaptureErrors, CaptureError{Category: category, Error: msg})
		}

		sort.Slice(r.CaptureErrors, func(i, j int) bool {
			return r.CaptureErrors[i].Category < r.CaptureErrors[j].Category
		})
	}

	if baseline != nil && r.Namespace == "" {
		r.Namespace = baseline.Namespace
	}

	return r
}

func rank(s analyzer.Severity) int {
	switch s {
	case analyzer.SeverityCritical:
		return 3
	case analyzer.SeverityWarning:
		return 2
	case analyzer.SeverityInfo:
		return 1
	default:
		return 0
	}
}

func lastStatus(timeline *check.Timeline, componentID string) string {
	status := "no samples"

	for _, sample := range timeline.Samples() {
		if sample.ComponentID == componentID {
			status = sample.Status.String()
		}
	}

	return status
}
