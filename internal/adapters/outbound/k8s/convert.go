package k8s

import (
	"fmt"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/opsrange/restartdiag/internal/logic/cluster"
)

func toDomainNamespace(ns *corev1.Namespace) cluster.NamespaceInfo {
	return cluster.NamespaceInfo{
		Name:  ns.Name,
		Phase: string(ns.Status.Phase),
	}
}

func toDomainNode(node *corev1.Node) cluster.NodeInfo {
	out := cluster.NodeInfo{
		Name:          node.Name,
		Unschedulable: node.Spec.Unschedulable,
		KubeletVer:    node.Status.NodeInfo.KubeletVersion,
	}

	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			out.Ready = cond.Status == corev1.ConditionTrue

			break
		}
	}

	return out
}

func toDomainPod(pod *corev1.Pod) cluster.PodInfo {
	out := cluster.PodInfo{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Phase:     string(pod.Status.Phase),
		NodeName:  pod.Spec.NodeName,
	}

	if pod.Status.StartTime != nil {
		out.StartedAt = pod.Status.StartTime.Time
	}

	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			out.Ready = cond.Status == corev1.ConditionTrue

			break
		}
	}

	for i := range pod.Status.ContainerStatuses {
		out.Containers = append(out.Containers, toDomainContainer(&pod.Status.ContainerStatuses[i]))
	}

	for i := range pod.Status.InitContainerStatuses {
		out.Inits = append(out.Inits, toDomainContainer(&pod.Status.InitContainerStatuses[i]))
	}

	return out
}

func toDomainContainer(cs *corev1.ContainerStatus) cluster.ContainerInfo {
	out := cluster.ContainerInfo{
		Name:         cs.Name,
		Ready:        cs.Ready,
		RestartCount: cs.RestartCount,
	}

	switch {
	case cs.State.Running != nil:
		out.State = "running"
	case cs.State.Waiting != nil:
		out.State = "waiting"
		out.Reason = cs.State.Waiting.Reason
		out.Message = cs.State.Waiting.Message
	case cs.State.Terminated != nil:
		out.State = "terminated"
		out.Reason = cs.State.Terminated.Reason
		out.Message = cs.State.Terminated.Message
	}

	return out
}

func toDomainPVC(pvc *corev1.PersistentVolumeClaim) cluster.PVCInfo {
	out := cluster.PVCInfo{
		Name:      pvc.Name,
		Namespace: pvc.Namespace,
		Phase:     string(pvc.Status.Phase),
		Volume:    pvc.Spec.VolumeName,
	}

	if pvc.Spec.StorageClassName != nil {
		out.StorageCls = *pvc.Spec.StorageClassName
	}

	if capacity, ok := pvc.Status.Capacity[corev1.ResourceStorage]; ok {
		out.Capacity = capacity.String()
	}

	return out
}

func toDomainJob(job *batchv1.Job) cluster.JobInfo {
	out := cluster.JobInfo{
		Name:      job.Name,
		Namespace: job.Namespace,
		Active:    job.Status.Active,
		Succeeded: job.Status.Succeeded,
		Failed:    job.Status.Failed,
	}

	for _, cond := range job.Status.Conditions {
		out.Conditions = append(out.Conditions, cluster.JobCondition{
			Type:    string(cond.Type),
			Status:  string(cond.Status),
			Reason:  cond.Reason,
			Message: cond.Message,
		})
	}

	return out
}

func toDomainEndpoints(ep *corev1.Endpoints) cluster.EndpointInfo {
	out := cluster.EndpointInfo{
		Service:   ep.Name,
		Namespace: ep.Namespace,
	}

	for i := range ep.Subsets {
		out.ReadyAddresses += len(ep.Subsets[i].Addresses)
		out.NotReady += len(ep.Subsets[i].NotReadyAddresses)
	}

	return out
}

func toDomainEvent(ev *corev1.Event) cluster.EventInfo {
	out := cluster.EventInfo{
		Namespace: ev.Namespace,
		Type:      ev.Type,
		Reason:    ev.Reason,
		Object:    fmt.Sprintf("%s/%s", ev.InvolvedObject.Kind, ev.InvolvedObject.Name),
		Message:   ev.Message,
		Count:     ev.Count,
		LastSeen:  ev.LastTimestamp.Time,
	}

	if out.LastSeen.IsZero() {
		out.LastSeen = ev.EventTime.Time
	}

	return out
}

// toDomainServing reads the Ready condition from an InferenceService-style
// custom resource: .status.conditions[type==Ready].
func toDomainServing(obj *unstructured.Unstructured) cluster.ServingInfo {
	out := cluster.ServingInfo{
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
	}

	conditions, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil || !found {
		out.Reason = "NoStatus"

		return out
	}

	for _, raw := range conditions {
		cond, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		condType, _ := cond["type"].(string)
		if condType != "Ready" {
			continue
		}

		status, _ := cond["status"].(string)
		out.Ready = status == "True"

		if reason, ok := cond["reason"].(string); ok {
			out.Reason = reason
		}

		break
	}

	return out
}

func toDomainPodUsage(pm *metricsv1beta1.PodMetrics) cluster.PodUsage {
	out := cluster.PodUsage{
		Name:      pm.Name,
		Namespace: pm.Namespace,
	}

	var totalCPU, totalMem int64

	for i := range pm.Containers {
		if c := pm.Containers[i].Usage.Cpu(); c != nil {
			totalCPU += c.MilliValue()
		}

		if m := pm.Containers[i].Usage.Memory(); m != nil {
			totalMem += m.Value()
		}
	}

	out.CPU = fmt.Sprintf("%dm", totalCPU)
	out.Memory = fmt.Sprintf("%dMi", totalMem/(1024*1024))

	return out
}
