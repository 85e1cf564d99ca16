// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MarksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_marks_total",
			Help: "Total number of attendance marks written",
		},
		[]string{"status"},
	)

	AttendancePercentage = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_percentage",
			Help:    "Distribution of per-student attendance percentages",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"range"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_total",
			Help: "Total number of exported reports",
		},
		[]string{"kind", "format"},
	)
)
