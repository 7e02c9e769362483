package rebalance

import (
	"context"
	"math"
	"strings"

	"github.com/kilianp07/sirene/core/logger"
	"github.com/kilianp07/sirene/core/model"
)

// Placement is one proposed unit move: the unit should relocate to Position
// and be associated with StationID.
type Placement struct {
	UnitID    string
	UnitType  model.UnitType
	StationID string
	Position  model.Coordinate
}

// Allocator computes placements for the idle fleet. The capacity-weighted
// implementation below is deterministic; alternative implementations (such as
// the AI-assisted one in infra/ai) may not be and may legitimately return no
// placements at all.
type Allocator interface {
	Allocate(ctx context.Context, idle map[model.UnitType][]model.Unit, stations []model.Station, sc model.Scenario) ([]Placement, error)
}

// WeightedAllocator distributes idle units over stations with a weighted
// round-robin: a station with weight w occupies w slots of a flattened cycle
// list, and unit i goes to cycle[i mod len(cycle)]. Weights derive from
// per-type capacity, boosted for stations in the scenario's hot region.
type WeightedAllocator struct {
	log logger.Logger
}

// NewWeightedAllocator returns the deterministic capacity-weighted allocator.
func NewWeightedAllocator(log logger.Logger) *WeightedAllocator {
	if log == nil {
		log = nopLogger{}
	}
	return &WeightedAllocator{log: log}
}

type stationWeight struct {
	station model.Station
	weight  int
}

// weightsFor computes the station weights for one unit type, preserving the
// station input order. Stations that cannot house the type, or whose boosted
// weight rounds to zero, are excluded.
func weightsFor(stations []model.Station, sc model.Scenario, t model.UnitType) []stationWeight {
	hot := strings.ToLower(strings.TrimSpace(sc.Region))
	volume := sc.ExpectedCallVolume
	if volume < 0 {
		volume = 0
	}
	hotMultiplier := 1.0 + volume

	var out []stationWeight
	for _, s := range stations {
		capacity := s.CapacityFor(t)
		if capacity <= 0 {
			continue
		}
		w := capacity
		if strings.ToLower(strings.TrimSpace(s.Region)) == hot {
			w = int(math.Round(float64(capacity) * hotMultiplier))
		}
		if w <= 0 {
			continue
		}
		out = append(out, stationWeight{station: s, weight: w})
	}
	return out
}

// Allocate assigns every idle unit of every type to a station. A type with no
// housing station anywhere is skipped with a warning; its units keep their
// current position.
func (a *WeightedAllocator) Allocate(ctx context.Context, idle map[model.UnitType][]model.Unit, stations []model.Station, sc model.Scenario) ([]Placement, error) {
	var placements []Placement
	for _, t := range model.UnitTypes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		units := idle[t]
		if len(units) == 0 {
			continue
		}
		weights := weightsFor(stations, sc, t)
		if len(weights) == 0 {
			a.log.Warnf("no stations with capacity for type=%s; units keep their positions", t)
			continue
		}

		var cycle []model.Station
		for _, sw := range weights {
			for i := 0; i < sw.weight; i++ {
				cycle = append(cycle, sw.station)
			}
		}

		for i, u := range units {
			st := cycle[i%len(cycle)]
			placements = append(placements, Placement{
				UnitID:    u.ID,
				UnitType:  t,
				StationID: st.ID,
				Position:  st.Position,
			})
		}
	}
	return placements, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
