// Package rebalance implements the capacity-weighted redistribution of the
// idle fleet across stations according to a scenario's environmental factors.
package rebalance

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/sirene/core/events"
	"github.com/kilianp07/sirene/core/geo"
	"github.com/kilianp07/sirene/core/logger"
	"github.com/kilianp07/sirene/core/metrics"
	"github.com/kilianp07/sirene/core/model"
	"github.com/kilianp07/sirene/internal/eventbus"
)

// Fleet is the registry surface the rebalancer needs.
type Fleet interface {
	ListByTypeAndStatus(t model.UnitType, s model.UnitStatus) []model.Unit
	UpdatePositionIfAvailable(id string, pos model.Coordinate, stationID string) (bool, error)
	Stations() []model.Station
}

// Result summarizes one rebalance run: the committed placements plus coverage
// statistics over the displacement distances.
type Result struct {
	ScenarioID    string
	Placements    []Placement
	Skipped       int // proposed moves dropped because the unit went busy mid-run
	MeanShiftKm   float64
	StddevShiftKm float64
}

// Rebalancer snapshots the idle pool per type, delegates station selection to
// an Allocator and commits the resulting positions. Units that turn busy
// between snapshot and commit are skipped silently; station assignment is
// advisory positioning, not a reservation. Never changes unit status.
type Rebalancer struct {
	fleet   Fleet
	alloc   Allocator
	logger  logger.Logger
	metrics metrics.MetricsSink
	bus     eventbus.EventBus
}

// New creates a Rebalancer. sink, bus and log may be nil.
func New(fl Fleet, alloc Allocator, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Rebalancer, error) {
	if fl == nil || alloc == nil {
		return nil, fmt.Errorf("rebalance: nil parameter provided to New")
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Rebalancer{fleet: fl, alloc: alloc, logger: log, metrics: sink, bus: bus}, nil
}

// Rebalance recomputes and commits station assignments for the idle fleet
// under the given scenario. Re-running with identical inputs yields identical
// placements.
func (r *Rebalancer) Rebalance(ctx context.Context, sc model.Scenario) (Result, error) {
	idle := make(map[model.UnitType][]model.Unit, len(model.UnitTypes()))
	before := make(map[string]model.Coordinate)
	for _, t := range model.UnitTypes() {
		units := r.fleet.ListByTypeAndStatus(t, model.UnitAvailable)
		idle[t] = units
		for _, u := range units {
			before[u.ID] = u.Position
		}
	}

	proposed, err := r.alloc.Allocate(ctx, idle, r.fleet.Stations(), sc)
	if err != nil {
		return Result{}, fmt.Errorf("allocate: %w", err)
	}

	res := Result{ScenarioID: sc.ID}
	var shifts []float64
	var recs []metrics.RebalanceRecord
	now := time.Now()
	for _, p := range proposed {
		moved, err := r.fleet.UpdatePositionIfAvailable(p.UnitID, p.Position, p.StationID)
		if err != nil {
			return Result{}, err
		}
		if !moved {
			res.Skipped++
			continue
		}
		shift := geo.Distance(before[p.UnitID], p.Position)
		shifts = append(shifts, shift)
		res.Placements = append(res.Placements, p)
		recs = append(recs, metrics.RebalanceRecord{
			ScenarioID: sc.ID,
			UnitID:     p.UnitID,
			UnitType:   p.UnitType,
			StationID:  p.StationID,
			ShiftKm:    shift,
			Timestamp:  now,
		})
	}

	if len(shifts) > 0 {
		res.MeanShiftKm = stat.Mean(shifts, nil)
	}
	if len(shifts) > 1 {
		res.StddevShiftKm = stat.StdDev(shifts, nil)
	}

	r.logger.Infof("rebalanced scenario=%s moves=%d skipped=%d mean_shift_km=%.2f",
		sc.ID, len(res.Placements), res.Skipped, res.MeanShiftKm)
	if r.bus != nil {
		r.bus.Publish(events.RebalanceEvent{
			ScenarioID:    sc.ID,
			Moves:         len(res.Placements),
			MeanShiftKm:   res.MeanShiftKm,
			StddevShiftKm: res.StddevShiftKm,
			Timestamp:     now,
		})
	}
	if r.metrics != nil && len(recs) > 0 {
		if err := r.metrics.RecordRebalance(recs); err != nil {
			r.logger.Errorf("metrics error: %v", err)
		}
	}
	return res, nil
}
