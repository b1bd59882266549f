// Package metrics defines the Prometheus metrics of the service.
package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "babytracker"

// Metrics holds Prometheus metrics for the service
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight *prometheus.GaugeVec
	UploadCounter    *prometheus.CounterVec
	UploadBytes      *prometheus.CounterVec

	reg prometheus.Registerer
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
			[]string{"method"},
		),
		UploadCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uploads",
				Name:      "objects_total",
				Help:      "Uploaded media objects by bucket and result",
			},
			[]string{"bucket", "result"},
		),
		UploadBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uploads",
				Name:      "bytes_total",
				Help:      "Bytes of media successfully uploaded by bucket",
			},
			[]string{"bucket"},
		),
		reg: reg,
	}
}

// ObserveUpload records the outcome of one object upload.
func (m *Metrics) ObserveUpload(bucket string, size int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.UploadCounter.WithLabelValues(bucket, "error").Inc()
		return
	}
	m.UploadCounter.WithLabelValues(bucket, "ok").Inc()
	m.UploadBytes.WithLabelValues(bucket).Add(float64(size))
}

// RegisterPoolStats exposes database connection pool statistics, read at scrape time.
func (m *Metrics) RegisterPoolStats(pool *pgxpool.Pool) {
	stat := func(name, help string, value func(*pgxpool.Stat) float64) {
		promauto.With(m.reg).NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(pool.Stat()) })
	}
	stat("total_conns", "Total connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) })
	stat("acquired_conns", "Connections currently acquired", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) })
	stat("idle_conns", "Idle connections", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) })
	stat("empty_acquire_total", "Acquires that waited for a connection", func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) })
}
