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

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active embedding workers",
})

var ingestedChunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingested_chunks_total",
	Help: "Chunks written to the vector store per course",
}, []string{"course"})

var answerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "answer_request_duration_seconds",
	Help:    "Total time spent answering a query.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var pipelineStepLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pipeline_step_latency_seconds",
	Help:    "Latency of individual answer pipeline steps.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"step"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

// WriteHeader records the status before delegating, so the request counter
// sees what the handler actually returned.
func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CountIngestedChunks(course string, count int) {
	ingestedChunksTotal.WithLabelValues(course).Add(float64(count))
}

func CaptureStepMetrics(step string, timeElapsed time.Duration) {
	pipelineStepLatency.WithLabelValues(step).Observe(timeElapsed.Seconds())
}

func CaptureAnswerMetrics(status string, timeElapsed time.Duration) {
	answerDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}
