// Package analyzer correlates the monitoring timeline and final snapshot
// into root-cause findings. Every rule is a pure function of the derived
// ready-times, the snapshots and the configured thresholds: identical inputs
// produce identical findings.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/opsrange/restartdiag/internal/logic/check"
	"github.com/opsrange/restartdiag/internal/logic/cluster"
	"github.com/opsrange/restartdiag/internal/logic/snapshot"
)

// DeriveReadyTimes computes, per component, the earliest elapsed time at
// which its status first reached READY. Flapping after the first READY does
// not retract the value.
func DeriveReadyTimes(timeline *check.Timeline) map[string]ReadyTime {
	out := make(map[string]ReadyTime)

	for _, sample := range timeline.Samples() {
		if rt, ok := out[sample.ComponentID]; ok && rt.Reached {
			continue
		}

		if sample.Status.IsReady() {
			out[sample.ComponentID] = ReadyTime{Seconds: sample.ElapsedSeconds, Reached: true}
		} else if _, ok := out[sample.ComponentID]; !ok {
			out[sample.ComponentID] = ReadyTime{}
		}
	}

	return out
}

// Window returns the monitoring window length observed in the timeline: the
// largest elapsed time recorded.
func Window(timeline *check.Timeline) int64 {
	var max int64

	for _, sample := range timeline.Samples() {
		if sample.ElapsedSeconds > max {
			max = sample.ElapsedSeconds
		}
	}

	return max
}

// Analyze evaluates the rule set. Findings are emitted in a fixed order
// (dependency races in declared check order, then storage timing, then job
// failures, then the pod-failure summary) so the output is deterministic.
func Analyze(
	checks []check.ComponentCheck,
	timeline *check.Timeline,
	final *snapshot.Snapshot,
	rules Rules,
) []Finding {
	readyTimes := DeriveReadyTimes(timeline)
	window := Window(timeline)

	var findings []Finding

	findings = append(findings, dependencyRaceFindings(checks, readyTimes, window, rules)...)
	findings = append(findings, storageTimingFindings(checks, timeline, readyTimes, window, rules)...)
	findings = append(findings, jobFailureFindings(checks, timeline)...)

	if final != nil {
		counts := CountFailures(final.Pods)
		if counts.Total() > 0 {
			findings = append(findings, podFailureFinding(counts, final.Pods))
		}
	}

	return findings
}

// dependencyRaceFindings fires once per declared dependsOn edge whose
// downstream and upstream components are both late (never ready, or first
// ready beyond the late threshold) within the same window.
func dependencyRaceFindings(
	checks []check.ComponentCheck,
	readyTimes map[string]ReadyTime,
	window int64,
	rules Rules,
) []Finding {
	lateThreshold := int64(rules.LateThreshold.Seconds())

	late := func(id string) bool {
		rt := readyTimes[id]
		if !rt.Reached {
			return true
		}

		return rt.Seconds > lateThreshold
	}

	describe := func(id string) string {
		rt := readyTimes[id]
		if !rt.Reached {
			return fmt.Sprintf("%s not ready within %ds window", id, window)
		}

		return fmt.Sprintf("%s first ready at %ds", id, rt.Seconds)
	}

	var findings []Finding

	for i := range checks {
		downstream := checks[i]

		for _, upstream := range downstream.DependsOn {
			if !late(downstream.ID) || !late(upstream) {
				continue
			}

			findings = append(findings, Finding{
				Rule:      RuleDependencyRace,
				Severity:  SeverityCritical,
				Component: downstream.ID,
				Message: fmt.Sprintf(
					"%s and its dependency %s were both late or never ready",
					downstream.ID, upstream,
				),
				Evidence: fmt.Sprintf(
					"%s; %s",
					describe(downstream.ID), describe(upstream),
				),
				Recommendation: fmt.Sprintf(
					"add an explicit wait-for-dependency guard (init container or startup probe) "+
						"so %s does not start serving until %s reports ready",
					downstream.ID, upstream,
				),
			})
		}
	}

	return findings
}

// storageTimingFindings covers PVC checks: bound later than the threshold,
// or never bound at all.
func storageTimingFindings(
	checks []check.ComponentCheck,
	timeline *check.Timeline,
	readyTimes map[string]ReadyTime,
	window int64,
	rules Rules,
) []Finding {
	threshold := int64(rules.StorageBoundThreshold.Seconds())

	var findings []Finding

	for i := range checks {
		c := checks[i]
		if c.Kind != check.KindPVC {
			continue
		}

		rt := readyTimes[c.ID]

		if !rt.Reached {
			findings = append(findings, Finding{
				Rule:      RuleStorageTiming,
				Severity:  SeverityCritical,
				Component: c.ID,
				Message:   fmt.Sprintf("PVC %s never reached Bound", c.Name),
				Evidence: fmt.Sprintf(
					"last observed phase %q; window %ds",
					lastPhase(timeline, c.ID), window,
				),
				Recommendation: "verify the storage class and provisioner recovered from the " +
					"restart before starting consumers; check provisioner pod logs",
			})

			continue
		}

		if rt.Seconds > threshold {
			findings = append(findings, Finding{
				Rule:      RuleStorageTiming,
				Severity:  SeverityWarning,
				Component: c.ID,
				Message:   fmt.Sprintf("PVC %s was slow to bind", c.Name),
				Evidence: fmt.Sprintf(
					"bound after %ds (threshold %ds)",
					rt.Seconds, threshold,
				),
				Recommendation: "add a storage-readiness verification step before consumers " +
					"mount this volume; slow binding after a full restart starves dependents",
			})
		}
	}

	return findings
}

// jobFailureFindings covers Job checks whose last observed state is a
// terminal failure or backoff exhaustion.
func jobFailureFindings(checks []check.ComponentCheck, timeline *check.Timeline) []Finding {
	var findings []Finding

	for i := range checks {
		c := checks[i]
		if c.Kind != check.KindJob {
			continue
		}

		phase := lastPhase(timeline, c.ID)
		if !strings.HasPrefix(phase, "Failed") && !strings.Contains(phase, "BackoffLimitExceeded") {
			continue
		}

		findings = append(findings, Finding{
			Rule:      RuleJobFailure,
			Severity:  SeverityCritical,
			Component: c.ID,
			Message:   fmt.Sprintf("job %s ended in terminal failure", c.Name),
			Evidence:  fmt.Sprintf("terminal state %s", phase),
			Recommendation: "increase the job's backoffLimit (retry budget) and add a " +
				"storage/dependency-readiness precondition so the job does not burn retries " +
				"while its dependencies are still starting",
		})
	}

	return findings
}

func podFailureFinding(counts FailureCounts, pods []cluster.PodInfo) Finding {
	var failing []string

	for i := range pods {
		if !pods[i].Healthy() {
			failing = append(failing, pods[i].Name)
		}
	}

	return Finding{
		Rule:     RulePodFailures,
		Severity: SeverityInfo,
		Message: fmt.Sprintf(
			"final snapshot shows %d pods in failure states "+
				"(crash-loop %d, image-pull %d, init-failure %d, pending %d)",
			counts.Total(), counts.CrashLoop, counts.ImagePull, counts.InitFailure, counts.Pending,
		),
		Evidence:       strings.Join(failing, ", "),
		Recommendation: "inspect the per-pod log bundles under the deep/ capture directories",
	}
}

// CountFailures scans final-snapshot pods for crash-loop, image-pull,
// init-container-failure and stuck-pending states.
func CountFailures(pods []cluster.PodInfo) FailureCounts {
	var counts FailureCounts

	for i := range pods {
		pod := pods[i]

		crashLoop, imagePull := false, false

		for _, c := range pod.Containers {
			switch c.Reason {
			case "CrashLoopBackOff":
				crashLoop = true
			case "ImagePullBackOff", "ErrImagePull", "InvalidImageName":
				imagePull = true
			}
		}

		initFailure := false

		for _, c := range pod.Inits {
			if c.Reason == "CrashLoopBackOff" || c.Reason == "Error" || c.RestartCount > 0 {
				initFailure = true
			}
		}

		switch {
		case crashLoop:
			counts.CrashLoop++
		case imagePull:
			counts.ImagePull++
		case initFailure:
			counts.InitFailure++
		case pod.Phase == "Pending":
			counts.Pending++
		}
	}

	return counts
}

func lastPhase(timeline *check.Timeline, componentID string) string {
	phase := "never observed"

	for _, sample := range timeline.Samples() {
		if sample.ComponentID != componentID {
			continue
		}

		if sample.Status.Kind == check.StatusPhase {
			phase = sample.Status.Phase
		} else {
			phase = sample.Status.String()
		}
	}

	return phase
}
