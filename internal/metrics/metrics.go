package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics cho lending service, expose tại GET /metrics

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Lending ledger
	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_checkouts_total",
			Help: "Checkout attempts by result",
		},
		[]string{"result"}, // success, unavailable, reader_not_found, invalid, error
	)

	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_returns_total",
			Help: "Return attempts by result",
		},
		[]string{"result"}, // returned, returned_late, not_found, already_returned, error
	)

	CopyCountViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lending_copy_count_violations_total",
			Help: "Returns rejected because available copies were already at total copies",
		},
	)

	// Overdue notification
	OverdueReadersGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "overdue_readers",
			Help: "Distinct readers with overdue lendings seen by the last notification run",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdue_notifications_total",
			Help: "Per-reader notification outcomes",
		},
		[]string{"outcome"}, // sent, skipped, failed
	)

	NotifyRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overdue_notify_run_duration_seconds",
			Help:    "Duration of a full overdue notification run",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// Email circuit breaker: 0 = closed, 1 = half-open, 2 = open
	MailerCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mailer_circuit_breaker_state",
			Help: "SMTP circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Audit sink
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit entries that could not be persisted",
		},
	)

	// Database pool
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_connections",
			Help: "PostgreSQL pool connections by state",
		},
		[]string{"state"},
	)
)
