package handler

import (
	"strconv"
	"time"

	"github.com/enterprise/ga-view-proxy/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the report endpoint collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	UpstreamDuration *prometheus.HistogramVec
	RowsReturned     *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors with registry, or with the
// default registerer when registry is nil
func NewMetrics(registry prometheus.Registerer, namespace string) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of report requests by report kind and status code",
		}, []string{"report", "code"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent handling report requests",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"report"}),

		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Time spent waiting on the analytics reporting API",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"report", "result"}),

		RowsReturned: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rows_returned",
			Help:      "Number of rows returned per successful report",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"report"}),
	}
}

// ObserveRequest records a finished request
func (m *Metrics) ObserveRequest(kind report.Kind, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind.String(), strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(kind.String()).Observe(duration.Seconds())
}

// ObserveUpstream records one reporting API call
func (m *Metrics) ObserveUpstream(kind report.Kind, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.UpstreamDuration.WithLabelValues(kind.String(), result).Observe(duration.Seconds())
}

// ObserveRows records the size of a successful result
func (m *Metrics) ObserveRows(kind report.Kind, rows int) {
	if m == nil {
		return
	}
	m.RowsReturned.WithLabelValues(kind.String()).Observe(float64(rows))
}
