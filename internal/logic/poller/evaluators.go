package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opsrange/restartdiag/internal/logic/check"
)

// evaluate runs the evaluator for one component check. It never returns an
// error: query failures and timeouts degrade to StatusUnknown with the cause
// in the detail field, so one bad dependency cannot abort a tick.
func (s *Service) evaluate(ctx context.Context, c check.ComponentCheck) (check.Status, string) {
	switch c.Kind {
	case check.KindNamespace:
		return s.evaluateNamespace(ctx, c)
	case check.KindPodReady:
		return s.evaluatePodReady(ctx, c)
	case check.KindPVC:
		return s.evaluatePVC(ctx, c)
	case check.KindJob:
		return s.evaluateJob(ctx, c)
	case check.KindServing:
		return s.evaluateServing(ctx, c)
	default:
		return check.Unknown(), fmt.Sprintf("%v %q", check.ErrUnknownKind, c.Kind)
	}
}

func (s *Service) evaluateNamespace(ctx context.Context, c check.ComponentCheck) (check.Status, string) {
	_, err := s.repo.GetNamespaceQuery(ctx, c.Namespace)
	if err != nil {
		if isNotFound(err) {
			return check.NotFound(), ""
		}

		return check.Unknown(), err.Error()
	}

	// With a selector the namespace check degrades to a readiness ratio
	// over its pods.
	if c.Selector != "" {
		return s.evaluatePodReady(ctx, c)
	}

	return check.Exists(), ""
}

func (s *Service) evaluatePodReady(ctx context.Context, c check.ComponentCheck) (check.Status, string) {
	pods, err := s.repo.ListPodsQuery(ctx, c.Namespace, c.Selector)
	if err != nil {
		return check.Unknown(), err.Error()
	}

	ready := 0
	var notReady []string

	for i := range pods {
		if pods[i].Ready {
			ready++

			continue
		}

		notReady = append(notReady, pods[i].Name+"="+pods[i].Phase)
	}

	return check.Ratio(ready, len(pods)), strings.Join(notReady, ",")
}

func (s *Service) evaluatePVC(ctx context.Context, c check.ComponentCheck) (check.Status, string) {
	pvc, err := s.repo.GetPVCQuery(ctx, c.Namespace, c.Name)
	if err != nil {
		if isNotFound(err) {
			return check.NotFound(), ""
		}

		return check.Unknown(), err.Error()
	}

	// PVC phase is reported verbatim: Bound, Pending, Lost.
	return check.Phase(pvc.Phase), pvc.Volume
}

func (s *Service) evaluateJob(ctx context.Context, c check.ComponentCheck) (check.Status, string) {
	job, err := s.repo.GetJobQuery(ctx, c.Namespace, c.Name)
	if err != nil {
		if isNotFound(err) {
			return check.NotFound(), ""
		}

		return check.Unknown(), err.Error()
	}

	if cond, ok := job.TerminalCondition(); ok {
		phase := cond.Type
		if cond.Reason != "" {
			phase = fmt.Sprintf("%s(%s)", cond.Type, cond.Reason)
		}

		return check.Phase(phase), cond.Message
	}

	if job.Active > 0 {
		return check.Phase("Active"), fmt.Sprintf("active=%d failed=%d", job.Active, job.Failed)
	}

	return check.Phase("Pending"), fmt.Sprintf("succeeded=%d failed=%d", job.Succeeded, job.Failed)
}

func (s *Service) evaluateServing(ctx context.Context, c check.ComponentCheck) (check.Status, string) {
	svcs, err := s.repo.ListServingQuery(ctx, c.Namespace, c.Selector)
	if err != nil {
		return check.Unknown(), err.Error()
	}

	ready := 0
	var notReady []string

	for i := range svcs {
		if svcs[i].Ready {
			ready++

			continue
		}

		reason := svcs[i].Reason
		if reason == "" {
			reason = "NotReady"
		}

		notReady = append(notReady, svcs[i].Name+"="+reason)
	}

	return check.Ratio(ready, len(svcs)), strings.Join(notReady, ",")
}

func isNotFound(err error) bool {
	var target notFound

	return errors.As(err, &target)
}
