package check

import "fmt"

// StatusKind is the closed set of states an evaluator may report.
type StatusKind string

const (
	// StatusNotFound means the target resource does not exist.
	StatusNotFound StatusKind = "NOT_FOUND"
	// StatusNoPods means the selector matched zero pods.
	StatusNoPods StatusKind = "NO_PODS"
	// StatusPartial means some but not all matched instances are ready.
	StatusPartial StatusKind = "PARTIAL"
	// StatusReady means all matched instances are ready.
	StatusReady StatusKind = "READY"
	// StatusExists means the resource exists and no readiness ratio applies.
	StatusExists StatusKind = "EXISTS"
	// StatusUnknown means the query failed or timed out this tick.
	StatusUnknown StatusKind = "UNKNOWN"
	// StatusPhase carries a resource-specific phase string verbatim
	// (PVC phase, Job condition).
	StatusPhase StatusKind = "PHASE"
)

// Status is a typed evaluator result. Ready and Total are only meaningful for
// StatusPartial and StatusReady; Phase only for StatusPhase.
type Status struct {
	Kind  StatusKind `json:"kind"`
	Ready int        `json:"ready,omitempty"`
	Total int        `json:"total,omitempty"`
	Phase string     `json:"phase,omitempty"`
}

func NotFound() Status { return Status{Kind: StatusNotFound} }

func NoPods() Status { return Status{Kind: StatusNoPods} }

func Exists() Status { return Status{Kind: StatusExists} }

func Unknown() Status { return Status{Kind: StatusUnknown} }

func Phase(phase string) Status { return Status{Kind: StatusPhase, Phase: phase} }

func Ready(total int) Status { return Status{Kind: StatusReady, Ready: total, Total: total} }

func Partial(ready, total int) Status {
	return Status{Kind: StatusPartial, Ready: ready, Total: total}
}

// Ratio builds the readiness-ratio status for ready out of total instances.
func Ratio(ready, total int) Status {
	switch {
	case total == 0:
		return NoPods()
	case ready == total:
		return Ready(total)
	default:
		return Partial(ready, total)
	}
}

// IsReady reports whether the component counts as fully ready for
// time-to-ready derivation. EXISTS counts as ready (a presence check has no
// readiness ratio to wait for), as do a PVC phase of Bound and a Job
// condition of Complete; everything else does not.
func (s Status) IsReady() bool {
	switch s.Kind {
	case StatusReady, StatusExists:
		return true
	case StatusPhase:
		return s.Phase == "Bound" || s.Phase == "Complete"
	default:
		return false
	}
}

func (s Status) String() string {
	if s.Kind == StatusPartial {
		return fmt.Sprintf("PARTIAL(%d/%d)", s.Ready, s.Total)
	}

	if s.Kind == StatusPhase {
		return s.Phase
	}

	return string(s.Kind)
}
