package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "royalpalace_bookings_created_total",
		Help: "Bookings created, by type.",
	}, []string{"type"})

	BookingsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "royalpalace_bookings_failed_total",
		Help: "Booking attempts rejected, by reason.",
	}, []string{"reason"})

	ReceiptsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "royalpalace_receipts_generated_total",
		Help: "Receipts generated.",
	})

	PromoValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "royalpalace_promo_validations_total",
		Help: "Promo code validation attempts, by outcome.",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "royalpalace_http_requests_total",
		Help: "HTTP requests, by path and status.",
	}, []string{"path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "royalpalace_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	SyncTasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "royalpalace_sync_tasks_processed_total",
		Help: "Back-office sync tasks processed, by result.",
	}, []string{"result"})
)
