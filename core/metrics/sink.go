// Package metrics defines the sink interface used to record allocation
// outcomes. Sinks like the Prometheus and InfluxDB implementations in
// infra/metrics register themselves through the factory helpers and can be
// combined with NewMultiSink.
package metrics

import (
	"time"

	"github.com/kilianp07/sirene/core/model"
)

// AssignmentRecord captures one successful dispatch.
type AssignmentRecord struct {
	RequestID  string
	UnitID     string
	UnitType   model.UnitType
	DistanceKm float64
	Attempts   int
	Timestamp  time.Time
}

// RebalanceRecord captures one committed unit move during a rebalance run.
type RebalanceRecord struct {
	ScenarioID string
	UnitID     string
	UnitType   model.UnitType
	StationID  string
	ShiftKm    float64
	Timestamp  time.Time
}

// MetricsSink persists allocation records.
type MetricsSink interface {
	RecordAssignments(recs []AssignmentRecord) error
	RecordRebalance(recs []RebalanceRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordAssignments([]AssignmentRecord) error { return nil }
func (NopSink) RecordRebalance([]RebalanceRecord) error    { return nil }
