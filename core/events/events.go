package events

import (
	"time"

	"github.com/kilianp07/sirene/core/model"
)

// AssignmentEvent is published after a dispatch request reserves a unit.
type AssignmentEvent struct {
	RequestID  string
	UnitID     string
	UnitType   model.UnitType
	From       model.Coordinate
	To         model.Coordinate
	DistanceKm float64
	Attempts   int
	Timestamp  time.Time
}

// NoUnitEvent is published when a well-formed request finds no eligible unit.
type NoUnitEvent struct {
	UnitType  model.UnitType
	Location  model.Coordinate
	Timestamp time.Time
}

// RebalanceEvent summarizes one rebalance run.
type RebalanceEvent struct {
	ScenarioID    string
	Moves         int
	MeanShiftKm   float64
	StddevShiftKm float64
	Timestamp     time.Time
}

// FleetResetEvent is published when the whole fleet is reset to available.
type FleetResetEvent struct {
	Released  int
	Timestamp time.Time
}
