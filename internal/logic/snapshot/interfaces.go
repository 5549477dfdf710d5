package snapshot

import (
	"context"

	"github.com/opsrange/restartdiag/internal/logic/cluster"
)

// Repository is the port interface for the cluster queries capture needs.
// Implementations are provided by adapters in the outbound layer.
type Repository interface {
	ListNodesQuery(ctx context.Context) ([]cluster.NodeInfo, error)

	ListNamespacesQuery(ctx context.Context) ([]cluster.NamespaceInfo, error)

	ListPodsQuery(ctx context.Context, namespace, labelSelector string) ([]cluster.PodInfo, error)

	ListPVCsQuery(ctx context.Context, namespace string) ([]cluster.PVCInfo, error)

	ListJobsQuery(ctx context.Context, namespace string) ([]cluster.JobInfo, error)

	ListEndpointsQuery(ctx context.Context, namespace string) ([]cluster.EndpointInfo, error)

	ListEventsQuery(ctx context.Context, namespace string) ([]cluster.EventInfo, error)

	ListServingQuery(ctx context.Context, namespace, labelSelector string) ([]cluster.ServingInfo, error)

	ListPodUsageQuery(ctx context.Context, namespace string) ([]cluster.PodUsage, error)

	GetPodLogsQuery(ctx context.Context, ref cluster.PodRef, previous bool) (string, error)
}
