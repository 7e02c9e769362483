package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/sirene/core/metrics"
)

// PromSink records allocation events in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	distance    *prometheus.HistogramVec
	moves       *prometheus.CounterVec
}

// NewPromSink registers allocation metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unit_assignments_total",
		Help: "Total number of unit assignments",
	}, []string{"unit_type"})
	distance := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_distance_km",
		Help:    "Great-circle distance between assigned unit and incident",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"unit_type"})
	moves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rebalance_moves_total",
		Help: "Total number of units repositioned by rebalance runs",
	}, []string{"unit_type", "station_id"})

	for _, c := range []prometheus.Collector{assignments, distance, moves} {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := are.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					if c == assignments {
						assignments = existing
					} else {
						moves = existing
					}
				case *prometheus.HistogramVec:
					distance = existing
				}
			} else {
				return nil, err
			}
		}
	}

	return &PromSink{assignments: assignments, distance: distance, moves: moves}, nil
}

// RecordAssignments increments the counter and observes the distance for each
// assignment.
func (s *PromSink) RecordAssignments(recs []coremetrics.AssignmentRecord) error {
	for _, r := range recs {
		s.assignments.WithLabelValues(r.UnitType.String()).Inc()
		s.distance.WithLabelValues(r.UnitType.String()).Observe(r.DistanceKm)
	}
	return nil
}

// RecordRebalance increments the move counter per unit type and station.
func (s *PromSink) RecordRebalance(recs []coremetrics.RebalanceRecord) error {
	for _, r := range recs {
		s.moves.WithLabelValues(r.UnitType.String(), r.StationID).Inc()
	}
	return nil
}
