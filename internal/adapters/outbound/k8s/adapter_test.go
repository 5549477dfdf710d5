package k8s_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	"github.com/opsrange/restartdiag/internal/adapters/outbound/k8s"
)

var servingGVR = schema.GroupVersionResource{
	Group:    "serving.kserve.io",
	Version:  "v1beta1",
	Resource: "inferenceservices",
}

// notFound mirrors how the logic layer recognizes not-found errors.
type notFound interface {
	IsNotFound()
}

func isNotFound(err error) bool {
	var target notFound

	return errors.As(err, &target)
}

func newAdapter(t *testing.T, objects ...runtime.Object) *k8s.Adapter {
	t.Helper()

	return k8s.New(
		slog.Default(),
		fake.NewClientset(objects...),
		dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
			runtime.NewScheme(),
			map[schema.GroupVersionResource]string{servingGVR: "InferenceServiceList"},
		),
		metricsfake.NewSimpleClientset(),
		servingGVR,
	)
}

func TestAdapter_GetNamespaceQuery(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		adapter := newAdapter(t, &corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{Name: "apps"},
			Status:     corev1.NamespaceStatus{Phase: corev1.NamespaceActive},
		})

		ns, err := adapter.GetNamespaceQuery(t.Context(), "apps")
		require.NoError(t, err)
		require.Equal(t, "apps", ns.Name)
		require.Equal(t, "Active", ns.Phase)
	})

	t.Run("missing maps to not-found", func(t *testing.T) {
		t.Parallel()

		adapter := newAdapter(t)

		_, err := adapter.GetNamespaceQuery(t.Context(), "gone")
		require.Error(t, err)
		require.True(t, isNotFound(err))
	})
}

func TestAdapter_ListPodsQuery(t *testing.T) {
	t.Parallel()

	readyPod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "minio-0",
			Namespace: "apps",
			Labels:    map[string]string{"app": "minio"},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionTrue},
			},
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Name:  "minio",
					Ready: true,
					State: corev1.ContainerState{Running: &corev1.ContainerStateRunning{}},
				},
			},
		},
	}

	crashingPod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "engine-0",
			Namespace: "apps",
			Labels:    map[string]string{"app": "engine"},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Name:         "engine",
					Ready:        false,
					RestartCount: 5,
					State: corev1.ContainerState{
						Waiting: &corev1.ContainerStateWaiting{
							Reason:  "CrashLoopBackOff",
							Message: "back-off 5m restarting failed container",
						},
					},
				},
			},
			InitContainerStatuses: []corev1.ContainerStatus{
				{
					Name: "wait-for-storage",
					State: corev1.ContainerState{
						Terminated: &corev1.ContainerStateTerminated{Reason: "Completed"},
					},
				},
			},
		},
	}

	t.Run("selector filters and statuses convert", func(t *testing.T) {
		t.Parallel()

		adapter := newAdapter(t, readyPod, crashingPod)

		pods, err := adapter.ListPodsQuery(t.Context(), "apps", "app=engine")
		require.NoError(t, err)
		require.Len(t, pods, 1)

		pod := pods[0]
		require.Equal(t, "engine-0", pod.Name)
		require.False(t, pod.Ready)
		require.False(t, pod.Healthy())
		require.Equal(t, int32(5), pod.Restarts())

		require.Len(t, pod.Containers, 1)
		require.Equal(t, "waiting", pod.Containers[0].State)
		require.Equal(t, "CrashLoopBackOff", pod.Containers[0].Reason)

		require.Len(t, pod.Inits, 1)
		require.Equal(t, "terminated", pod.Inits[0].State)
		require.Equal(t, "Completed", pod.Inits[0].Reason)
	})

	t.Run("ready pod is healthy", func(t *testing.T) {
		t.Parallel()

		adapter := newAdapter(t, readyPod)

		pods, err := adapter.ListPodsQuery(t.Context(), "apps", "")
		require.NoError(t, err)
		require.Len(t, pods, 1)
		require.True(t, pods[0].Ready)
		require.True(t, pods[0].Healthy())
	})
}

func TestAdapter_GetPVCQuery(t *testing.T) {
	t.Parallel()

	storageClass := "standard"

	adapter := newAdapter(t, &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{Name: "model-storage", Namespace: "apps"},
		Spec: corev1.PersistentVolumeClaimSpec{
			VolumeName:       "pv-001",
			StorageClassName: &storageClass,
		},
		Status: corev1.PersistentVolumeClaimStatus{
			Phase: corev1.ClaimBound,
			Capacity: corev1.ResourceList{
				corev1.ResourceStorage: resource.MustParse("10Gi"),
			},
		},
	})

	pvc, err := adapter.GetPVCQuery(t.Context(), "apps", "model-storage")
	require.NoError(t, err)
	require.Equal(t, "Bound", pvc.Phase)
	require.Equal(t, "pv-001", pvc.Volume)
	require.Equal(t, "standard", pvc.StorageCls)
	require.Equal(t, "10Gi", pvc.Capacity)

	_, err = adapter.GetPVCQuery(t.Context(), "apps", "missing")
	require.True(t, isNotFound(err))
}

func TestAdapter_GetJobQuery(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t, &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Name: "platform-setup", Namespace: "apps"},
		Status: batchv1.JobStatus{
			Failed: 5,
			Conditions: []batchv1.JobCondition{
				{
					Type:   batchv1.JobFailed,
					Status: corev1.ConditionTrue,
					Reason: "BackoffLimitExceeded",
				},
			},
		},
	})

	job, err := adapter.GetJobQuery(t.Context(), "apps", "platform-setup")
	require.NoError(t, err)
	require.Equal(t, int32(5), job.Failed)

	cond, ok := job.TerminalCondition()
	require.True(t, ok)
	require.Equal(t, "Failed", cond.Type)
	require.Equal(t, "BackoffLimitExceeded", cond.Reason)
}

func TestAdapter_ListEventsQuery(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t, &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: "e1", Namespace: "apps"},
		Type:       "Warning",
		Reason:     "FailedMount",
		Message:    "MountVolume.SetUp failed",
		Count:      3,
		InvolvedObject: corev1.ObjectReference{
			Kind: "Pod",
			Name: "engine-0",
		},
		LastTimestamp: metav1.NewTime(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
	})

	events, err := adapter.ListEventsQuery(t.Context(), "apps")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Pod/engine-0", events[0].Object)
	require.Equal(t, "FailedMount", events[0].Reason)
	require.Equal(t, int32(3), events[0].Count)
	require.False(t, events[0].LastSeen.IsZero())
}

func TestAdapter_ListServingQuery(t *testing.T) {
	t.Parallel()

	inferenceService := func(name string, ready bool, reason string) *unstructured.Unstructured {
		status := "False"
		if ready {
			status = "True"
		}

		cond := map[string]any{"type": "Ready", "status": status}
		if reason != "" {
			cond["reason"] = reason
		}

		return &unstructured.Unstructured{Object: map[string]any{
			"apiVersion": "serving.kserve.io/v1beta1",
			"kind":       "InferenceService",
			"metadata": map[string]any{
				"name":      name,
				"namespace": "apps",
			},
			"status": map[string]any{
				"conditions": []any{cond},
			},
		}}
	}

	dynamicClient := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{servingGVR: "InferenceServiceList"},
		inferenceService("fraud-model", true, ""),
		inferenceService("churn-model", false, "RevisionMissing"),
	)

	adapter := k8s.New(
		slog.Default(),
		fake.NewClientset(),
		dynamicClient,
		metricsfake.NewSimpleClientset(),
		servingGVR,
	)

	svcs, err := adapter.ListServingQuery(t.Context(), "apps", "")
	require.NoError(t, err)
	require.Len(t, svcs, 2)

	byName := map[string]bool{}
	for _, s := range svcs {
		byName[s.Name] = s.Ready
	}

	require.True(t, byName["fraud-model"])
	require.False(t, byName["churn-model"])
}

func TestAdapter_ListPodUsageQuery(t *testing.T) {
	t.Parallel()

	metricsClient := metricsfake.NewSimpleClientset()

	// The fake metrics clientset cannot seed PodMetrics through
	// NewSimpleClientset: the tracker guesses the resource "podmetricses"
	// from the kind while the generated client reads "pods"
	// (kubernetes/kubernetes#95421), so seed the tracker directly.
	podMetricsGVR := schema.GroupVersionResource{Group: "metrics.k8s.io", Version: "v1beta1", Resource: "pods"}
	require.NoError(t, metricsClient.Tracker().Create(podMetricsGVR, &metricsv1beta1.PodMetrics{
		ObjectMeta: metav1.ObjectMeta{Name: "engine-0", Namespace: "apps"},
		Containers: []metricsv1beta1.ContainerMetrics{
			{
				Name: "engine",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse("250m"),
					corev1.ResourceMemory: resource.MustParse("128Mi"),
				},
			},
			{
				Name: "sidecar",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse("50m"),
					corev1.ResourceMemory: resource.MustParse("64Mi"),
				},
			},
		},
	}, "apps"))

	adapter := k8s.New(
		slog.Default(),
		fake.NewClientset(),
		dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
			runtime.NewScheme(),
			map[schema.GroupVersionResource]string{servingGVR: "InferenceServiceList"},
		),
		metricsClient,
		servingGVR,
	)

	usage, err := adapter.ListPodUsageQuery(t.Context(), "apps")
	require.NoError(t, err)
	require.Len(t, usage, 1)
	require.Equal(t, "300m", usage[0].CPU)
	require.Equal(t, "192Mi", usage[0].Memory)
}
