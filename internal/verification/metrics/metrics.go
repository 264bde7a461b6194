package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for verification operations.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	ReviewsTotal       *prometheus.CounterVec
	RecordsExpired     prometheus.Counter
	RecordsDeleted     prometheus.Counter
	CartEvaluations    *prometheus.CounterVec
	CartWarnings       *prometheus.CounterVec
	PendingQueueDepth  prometheus.Gauge
	SubmitLatency      prometheus.Histogram
	SweepDuration      prometheus.Histogram
}

// New registers and returns verification metrics collectors.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fdm_verification_submissions_total",
			Help: "Total verification document submissions, labeled by document type and outcome",
		}, []string{"document_type", "outcome"}),
		ReviewsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fdm_verification_reviews_total",
			Help: "Total admin review decisions, labeled by decision",
		}, []string{"decision"}),
		RecordsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fdm_verification_records_expired_total",
			Help: "Total VERIFIED records transitioned to EXPIRED by the sweeper",
		}),
		RecordsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fdm_verification_records_deleted_total",
			Help: "Total verification records deleted on user or admin request",
		}),
		CartEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fdm_cart_evaluations_total",
			Help: "Total cart eligibility evaluations, labeled by outcome",
		}, []string{"outcome"}),
		CartWarnings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fdm_cart_warnings_total",
			Help: "Total cart warnings emitted, labeled by warning type",
		}, []string{"type"}),
		PendingQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fdm_verification_pending_queue_depth",
			Help: "Current number of PENDING records awaiting review",
		}),
		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fdm_verification_submit_latency_seconds",
			Help:    "Latency of document submissions in seconds, including asset upload",
			Buckets: prometheus.DefBuckets,
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fdm_verification_sweep_duration_seconds",
			Help:    "Duration of expiry sweep runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
