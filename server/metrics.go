package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "histdiff"

const serverSubsystem = "server"

// metrics holds the server's prometheus collectors.
type metrics struct {
	// connections is the number of open websocket connections.
	connections prometheus.Gauge

	// requests counts requests by message type.
	// Labels: type (versionsReq, viewReq, unknown)
	requests *prometheus.CounterVec

	// errors counts requests answered with an error message.
	errors prometheus.Counter

	// lines observes the number of lines sent per view.
	lines prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: serverSubsystem,
			Name:      "connections",
			Help:      "Number of open websocket connections.",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: serverSubsystem,
			Name:      "requests_total",
			Help:      "Requests received, by message type.",
		}, []string{"type"}),
		errors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: serverSubsystem,
			Name:      "errors_total",
			Help:      "Requests answered with an error message.",
		}),
		lines: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: serverSubsystem,
			Name:      "view_lines",
			Help:      "Lines sent per view.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}
