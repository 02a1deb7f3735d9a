package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arcade_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	QueuePromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_queue_promotions_total",
			Help: "Replacement queue items promoted to Using",
		},
	)

	AutoUnassignsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_auto_unassigns_total",
			Help: "Items displaced from a machine by a new Using assignment",
		},
	)

	RelinksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_fleet_relinks_total",
			Help: "Full fleet relink passes",
		},
	)

	PanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_panics_recovered_total",
			Help: "Handler panics caught by the recovery middleware",
		},
	)

	LowStockItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arcade_low_stock_items",
			Help: "Active stock items at or below their low stock threshold",
		},
	)
)
