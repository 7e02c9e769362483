package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal        *prometheus.CounterVec
	selectionLatency     *prometheus.HistogramVec
	reservationConflicts prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Counter) {
	req := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_requests_total",
			Help: "Number of unit requests by type and outcome",
		},
		[]string{"unit_type", "outcome"},
	)
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_selection_latency_seconds",
			Help:    "Latency of the candidate selection and reservation loop",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"unit_type"},
	)
	conflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_reservation_conflicts_total",
			Help: "Number of reservations lost to a concurrent request and retried",
		},
	)
	return req, lat, conflicts
}

func init() {
	requestsTotal, selectionLatency, reservationConflicts = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(requestsTotal, selectionLatency, reservationConflicts)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	requestsTotal, selectionLatency, reservationConflicts = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
