package k8s

import (
	"context"
	"fmt"
	"log/slog"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/opsrange/restartdiag/internal/logic/cluster"
)

// logTailLines bounds every log fetch; the capture layer truncates further.
const logTailLines = int64(200)

// Adapter implements the poller and snapshot repository ports against the
// Kubernetes API. All methods are read-only.
type Adapter struct {
	logger           *slog.Logger
	clientset        kubernetes.Interface
	dynamicClient    dynamic.Interface
	metricsClientset metricsv.Interface
	servingGVR       schema.GroupVersionResource
}

// New creates the cluster query adapter. servingGVR selects the custom
// resource type sampled by serving checks (InferenceService by default).
func New(
	logger *slog.Logger,
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	metricsClientset metricsv.Interface,
	servingGVR schema.GroupVersionResource,
) *Adapter {
	return &Adapter{
		logger:           logger,
		clientset:        clientset,
		dynamicClient:    dynamicClient,
		metricsClientset: metricsClientset,
		servingGVR:       servingGVR,
	}
}

func (a *Adapter) GetNamespaceQuery(ctx context.Context, name string) (cluster.NamespaceInfo, error) {
	ns, err := a.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return cluster.NamespaceInfo{}, fmt.Errorf("get namespace: %w", errNotFound)
		}

		return cluster.NamespaceInfo{}, fmt.Errorf("get namespace: %w", err)
	}

	return toDomainNamespace(ns), nil
}

func (a *Adapter) ListNamespacesQuery(ctx context.Context) ([]cluster.NamespaceInfo, error) {
	list, err := a.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}

	out := make([]cluster.NamespaceInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainNamespace(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) ListNodesQuery(ctx context.Context) ([]cluster.NodeInfo, error) {
	list, err := a.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	out := make([]cluster.NodeInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainNode(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) ListPodsQuery(
	ctx context.Context,
	namespace,
	labelSelector string,
) ([]cluster.PodInfo, error) {
	list, err := a.clientset.CoreV1().Pods(namespace).List(
		ctx,
		metav1.ListOptions{LabelSelector: labelSelector},
	)
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}

	out := make([]cluster.PodInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainPod(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) GetPVCQuery(ctx context.Context, namespace, name string) (cluster.PVCInfo, error) {
	pvc, err := a.clientset.CoreV1().PersistentVolumeClaims(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return cluster.PVCInfo{}, fmt.Errorf("get pvc: %w", errNotFound)
		}

		return cluster.PVCInfo{}, fmt.Errorf("get pvc: %w", err)
	}

	return toDomainPVC(pvc), nil
}

func (a *Adapter) ListPVCsQuery(ctx context.Context, namespace string) ([]cluster.PVCInfo, error) {
	list, err := a.clientset.CoreV1().PersistentVolumeClaims(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pvcs: %w", err)
	}

	out := make([]cluster.PVCInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainPVC(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) GetJobQuery(ctx context.Context, namespace, name string) (cluster.JobInfo, error) {
	job, err := a.clientset.BatchV1().Jobs(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return cluster.JobInfo{}, fmt.Errorf("get job: %w", errNotFound)
		}

		return cluster.JobInfo{}, fmt.Errorf("get job: %w", err)
	}

	return toDomainJob(job), nil
}

func (a *Adapter) ListJobsQuery(ctx context.Context, namespace string) ([]cluster.JobInfo, error) {
	list, err := a.clientset.BatchV1().Jobs(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]cluster.JobInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainJob(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) ListEndpointsQuery(ctx context.Context, namespace string) ([]cluster.EndpointInfo, error) {
	list, err := a.clientset.CoreV1().Endpoints(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}

	out := make([]cluster.EndpointInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainEndpoints(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) ListEventsQuery(ctx context.Context, namespace string) ([]cluster.EventInfo, error) {
	list, err := a.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]cluster.EventInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainEvent(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) ListServingQuery(
	ctx context.Context,
	namespace,
	labelSelector string,
) ([]cluster.ServingInfo, error) {
	list, err := a.dynamicClient.Resource(a.servingGVR).Namespace(namespace).List(
		ctx,
		metav1.ListOptions{LabelSelector: labelSelector},
	)
	if err != nil {
		return nil, fmt.Errorf("list serving resources: %w", err)
	}

	out := make([]cluster.ServingInfo, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainServing(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) ListPodUsageQuery(ctx context.Context, namespace string) ([]cluster.PodUsage, error) {
	list, err := a.metricsClientset.MetricsV1beta1().PodMetricses(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pod metrics: %w", err)
	}

	out := make([]cluster.PodUsage, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, toDomainPodUsage(&list.Items[i]))
	}

	return out, nil
}

func (a *Adapter) GetPodLogsQuery(
	ctx context.Context,
	ref cluster.PodRef,
	previous bool,
) (string, error) {
	tail := logTailLines
	req := a.clientset.CoreV1().Pods(ref.Namespace).GetLogs(ref.Name, &corev1.PodLogOptions{
		Container: ref.Container,
		Previous:  previous,
		TailLines: &tail,
	})

	raw, err := req.DoRaw(ctx)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", fmt.Errorf("get pod logs: %w", errNotFound)
		}

		return "", fmt.Errorf("get pod logs: %w", err)
	}

	return string(raw), nil
}
