package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var samplesTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "restartdiag_samples_total",
		Help: "Total status samples recorded per component and status kind.",
	},
	[]string{"component", "status"},
)

var queryFailuresTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "restartdiag_query_failures_total",
		Help: "Total component evaluations that degraded to UNKNOWN because the " +
			"cluster query failed or timed out.",
	},
	[]string{"component"},
)

var deepCapturesTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Name: "restartdiag_deep_captures_total",
		Help: "Total deep diagnostic captures taken during the monitoring window.",
	},
)

var captureFailuresTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "restartdiag_capture_failures_total",
		Help: "Total snapshot sub-queries that recorded a failure marker instead of data.",
	},
	[]string{"category"},
)

// RecordSample increments the sample counter for one component evaluation.
func RecordSample(component, status string) {
	samplesTotal.WithLabelValues(component, status).Inc()
}

// RecordQueryFailure increments the counter of evaluations degraded to UNKNOWN.
func RecordQueryFailure(component string) {
	queryFailuresTotal.WithLabelValues(component).Inc()
}

// RecordDeepCapture increments the deep-capture counter.
func RecordDeepCapture() {
	deepCapturesTotal.Inc()
}

// RecordCaptureFailure increments the capture-failure counter for a category.
func RecordCaptureFailure(category string) {
	captureFailuresTotal.WithLabelValues(category).Inc()
}
