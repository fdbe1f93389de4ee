package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of ingest jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var indexedChunks = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "indexed_chunks",
	Help: "Chunks currently searchable in the vector index",
})

var routedTierTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "routed_tier_total",
	Help: "Queries per complexity tier",
}, []string{"tier"})

var evaluatorFlagsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "evaluator_flags_total",
	Help: "Raised answer quality flags",
}, []string{"flag"})

var pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "query_pipeline_duration_seconds",
	Help:    "Total time spent answering one query.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pipeline_stage_latency_seconds",
	Help:    "Latency of pipeline stages and external calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"stage"})

// HttpStatusRecorder wraps a ResponseWriter so middleware can read the
// status after the handler ran. Flush is forwarded for streaming
// responses.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer, the
// streaming handler needs it to clear the write deadline.
func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func SetIndexedChunks(n int) {
	indexedChunks.Set(float64(n))
}

func RecordRoutedTier(tier string) {
	routedTierTotal.WithLabelValues(tier).Inc()
}

func RecordEvaluatorFlag(flag string) {
	evaluatorFlagsTotal.WithLabelValues(flag).Inc()
}

func CaptureExecutionMetrics(stage string, timeElapsed time.Duration) {
	stageLatency.WithLabelValues(stage).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(status string, timeElapsed time.Duration) {
	pipelineDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}
