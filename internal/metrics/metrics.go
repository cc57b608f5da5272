package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total login attempts",
		},
		[]string{"result"}, // ok|rejected
	)

	AdViewsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ad_views_total",
			Help: "Total confirmed ad views",
		},
	)

	WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Total withdrawal requests and moderation actions",
		},
		[]string{"action"}, // requested|completed|rejected
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(LoginsTotal)
	prometheus.MustRegister(AdViewsTotal)
	prometheus.MustRegister(WithdrawalsTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
