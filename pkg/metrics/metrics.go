// Package metrics Prometheus-метрики сервиса: HTTP, база данных, доменные счётчики
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics контейнер всех метрик сервиса
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Метрики базы данных
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBPoolOpen      prometheus.Gauge
	DBPoolInUse     prometheus.Gauge
	DBPoolIdle      prometheus.Gauge

	// Доменные метрики
	AppointmentsCreatedTotal     prometheus.Counter
	AppointmentsRescheduledTotal prometheus.Counter
	AppointmentsCancelledTotal   prometheus.Counter
	SlotConflictsTotal           prometheus.Counter
	TxSerializationRetriesTotal  prometheus.Counter
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBPoolOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open connections in the pool",
			ConstLabels: constLabels,
		}),

		DBPoolInUse: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),

		DBPoolIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle connections in the pool",
			ConstLabels: constLabels,
		}),

		AppointmentsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "appointments_created_total",
			Help:        "Total number of appointments created",
			ConstLabels: constLabels,
		}),

		AppointmentsRescheduledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "appointments_rescheduled_total",
			Help:        "Total number of appointments rescheduled",
			ConstLabels: constLabels,
		}),

		AppointmentsCancelledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "appointments_cancelled_total",
			Help:        "Total number of appointments cancelled",
			ConstLabels: constLabels,
		}),

		SlotConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "slot_conflicts_total",
			Help:        "Total number of booking attempts rejected due to capacity conflicts",
			ConstLabels: constLabels,
		}),

		TxSerializationRetriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "tx_serialization_retries_total",
			Help:        "Total number of serializable transaction retries",
			ConstLabels: constLabels,
		}),
	}
}
