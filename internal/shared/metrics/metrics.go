package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector served at /metrics.
var Registry = prometheus.NewRegistry()

var (
	documentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "documents_created_total",
		Help: "Total documents created",
	})
	documentsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "documents_deleted_total",
		Help: "Total documents deleted",
	})
	commentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comments_created_total",
		Help: "Total comments created",
	})
	commentsResolvedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comments_resolved_total",
		Help: "Total comments resolved",
	})
	repliesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replies_created_total",
		Help: "Total replies created",
	})

	requestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		documentsCreatedTotal,
		documentsDeletedTotal,
		commentsCreatedTotal,
		commentsResolvedTotal,
		repliesCreatedTotal,
		requestDuration,
	)
}

// IncDocumentsCreated increments the created documents counter.
func IncDocumentsCreated() {
	documentsCreatedTotal.Inc()
}

// IncDocumentsDeleted increments the deleted documents counter.
func IncDocumentsDeleted() {
	documentsDeletedTotal.Inc()
}

// IncCommentsCreated increments the created comments counter.
func IncCommentsCreated() {
	commentsCreatedTotal.Inc()
}

// IncCommentsResolved increments the resolved comments counter.
func IncCommentsResolved() {
	commentsResolvedTotal.Inc()
}

// IncRepliesCreated increments the created replies counter.
func IncRepliesCreated() {
	repliesCreatedTotal.Inc()
}

// ObserveRequestDurationMs records an HTTP request duration in milliseconds.
func ObserveRequestDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	requestDuration.Observe(value)
}

// Handler exposes Registry in the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
