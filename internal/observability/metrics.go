package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	reviewDecisionsTotal   *prometheus.CounterVec
	recalculationsTotal    *prometheus.CounterVec
	rankingRequestsTotal   *prometheus.CounterVec
	notificationsPublished *prometheus.CounterVec
	sseClientsActive       prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradpush_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradpush_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradpush_errors_total",
			Help: "Total number of error responses returned.",
		}, []string{"method", "route", "status"})

		reviewDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradpush_review_decisions_total",
			Help: "Review decisions by action.",
		}, []string{"action"})

		recalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradpush_recalculations_total",
			Help: "Statistics recalculations by outcome.",
		}, []string{"outcome"})

		rankingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradpush_ranking_requests_total",
			Help: "Ranking queries by cache result.",
		}, []string{"cache"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradpush_notifications_published_total",
			Help: "Notifications published by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gradpush_sse_clients_active",
			Help: "Currently connected notification stream clients.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			reviewDecisionsTotal,
			recalculationsTotal,
			rankingRequestsTotal,
			notificationsPublished,
			sseClientsActive,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ReviewDecisionsTotal exposes the counter for review decisions.
func ReviewDecisionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewDecisionsTotal
}

// RecalculationsTotal exposes the counter for statistics recalculations.
func RecalculationsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return recalculationsTotal
}

// RankingRequestsTotal exposes the counter for ranking queries.
func RankingRequestsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return rankingRequestsTotal
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the gauge of connected stream clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
