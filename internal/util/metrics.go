package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_created_total",
		Help: "Total number of repair jobs created",
	})

	JobStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "job_status_transitions_total",
		Help: "Total number of job status transitions",
	}, []string{"to_status"})

	PartsConsumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parts_consumed_total",
		Help: "Total quantity of parts drawn from inventory",
	})

	ConsumptionFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_consumption_failed_total",
		Help: "Total number of failed inventory consumption requests",
	}, []string{"reason"})

	ConsumptionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_consumption_latency_seconds",
		Help:    "Latency of FIFO inventory consumption",
		Buckets: prometheus.DefBuckets,
	})

	WarrantyClaimsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warranty_claims_total",
		Help: "Total number of warranty claims registered",
	})

	WarrantyClaimsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warranty_claims_rejected_total",
		Help: "Total number of rejected warranty claim attempts",
	}, []string{"reason"})

	VerificationCodesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verification_codes_issued_total",
		Help: "Total number of verification codes issued",
	})

	VerificationAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_attempts_total",
		Help: "Total number of verification attempts",
	}, []string{"result"})

	NotificationsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Total number of notification dispatch attempts",
	}, []string{"result"})

	InvoicesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_issued_total",
		Help: "Total number of invoices issued",
	})

	PaymentsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Total number of payments recorded against invoices",
	}, []string{"kind"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
