package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 摄取相关指标：页数、映射记录数、失败次数
	SourcePagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_source_pages_total",
			Help: "Total number of pages fetched from the record source",
		},
	)

	RecordsMapped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_records_mapped_total",
			Help: "Total number of raw records mapped to progress records",
		},
	)

	IngestionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_failures_total",
			Help: "Total number of aborted ingestion runs",
		},
	)

	IngestionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Duration of full ingestion runs",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SourcePagesFetched)
	prometheus.MustRegister(RecordsMapped)
	prometheus.MustRegister(IngestionFailures)
	prometheus.MustRegister(IngestionDuration)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
