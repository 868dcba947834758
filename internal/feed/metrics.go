package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed names, used as the "feed" metric label and log attribute.
const (
	FeedTasks     = "tasks"
	FeedDashboard = "dashboard"
)

var (
	sessionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "basing_feed_sessions",
			Help: "Number of registered websocket sessions",
		},
		[]string{"feed"},
	)

	framesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basing_feed_frames_sent_total",
			Help: "Total frames written to websocket sessions",
		},
		[]string{"feed"},
	)

	storeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basing_feed_store_errors_total",
			Help: "Store reads that failed while serving a feed",
		},
		[]string{"feed"},
	)
)
