package poller

import (
	"context"

	"github.com/opsrange/restartdiag/internal/logic/check"
	"github.com/opsrange/restartdiag/internal/logic/cluster"
)

// Repository is the port interface for the cluster queries the evaluators
// need. Implementations are provided by adapters in the outbound layer.
type Repository interface {
	GetNamespaceQuery(ctx context.Context, name string) (cluster.NamespaceInfo, error)

	ListPodsQuery(ctx context.Context, namespace, labelSelector string) ([]cluster.PodInfo, error)

	GetPVCQuery(ctx context.Context, namespace, name string) (cluster.PVCInfo, error)

	GetJobQuery(ctx context.Context, namespace, name string) (cluster.JobInfo, error)

	ListServingQuery(ctx context.Context, namespace, labelSelector string) ([]cluster.ServingInfo, error)
}

// SampleSink receives each completed tick's samples for persistence. The
// poller is the sink's only writer during a monitoring phase.
type SampleSink interface {
	Append(samples []check.StatusSample) error
}

// TickObserver is notified after every completed tick. The snapshot
// scheduler piggybacks on the poll loop through this.
type TickObserver interface {
	ObserveTick(ctx context.Context, elapsedSeconds int64)
}

// notFound is a private interface for checking "not found" errors without
// importing the adapter package.
type notFound interface {
	IsNotFound()
}
