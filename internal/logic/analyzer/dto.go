package analyzer

import "time"

// Severity grades a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rule names identify which inference produced a finding.
const (
	RuleDependencyRace = "dependency-race"
	RuleStorageTiming  = "storage-timing"
	RuleJobFailure     = "job-failure"
	RulePodFailures    = "pod-failures"
)

// Finding is a single root-cause inference with supporting evidence and a
// recommendation. Findings are deterministic for identical inputs.
type Finding struct {
	Rule           string   `json:"rule"`
	Severity       Severity `json:"severity"`
	Component      string   `json:"component,omitempty"`
	Message        string   `json:"message"`
	Evidence       string   `json:"evidence,omitempty"`
	Recommendation string   `json:"recommendation"`
}

// Rules carries the configurable thresholds of the rule set. Acceptable
// dependency-startup latency varies by deployment, so nothing is hardcoded.
type Rules struct {
	// StorageBoundThreshold is the longest acceptable PVC bound time.
	StorageBoundThreshold time.Duration
	// LateThreshold is the first-READY time beyond which a component counts
	// as late for the dependency-race rule.
	LateThreshold time.Duration
}

// ReadyTime is the derived time-to-ready for one component. Once a component
// first reaches READY the value is immutable: later flapping never retracts
// it.
type ReadyTime struct {
	Seconds int64 `json:"seconds"`
	Reached bool  `json:"reached"`
}

// FailureCounts aggregates pod failure modes observed in the final snapshot.
type FailureCounts struct {
	CrashLoop   int `json:"crashLoop"`
	ImagePull   int `json:"imagePull"`
	InitFailure int `json:"initFailure"`
	Pending     int `json:"pending"`
}

// Total sums all counted failure modes.
func (f FailureCounts) Total() int {
	return f.CrashLoop + f.ImagePull + f.InitFailure + f.Pending
}
