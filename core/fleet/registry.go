// Package fleet holds the authoritative in-memory state of every unit and
// station for the lifetime of the process. The registry is the single shared
// mutable resource of the allocation engine; the dispatcher and the
// rebalancer are its only writers.
package fleet

import (
	"fmt"
	"sync"

	"github.com/kilianp07/sirene/core/model"
)

// Registry guards the fleet behind a single RWMutex. Reserve is a locked
// check-then-set, so exactly one of several concurrent dispatch attempts for
// the same unit wins; the losers observe UnitBusyError and re-select.
// Listing order is the load order, which makes nearest-unit tie-breaking
// deterministic.
type Registry struct {
	mu       sync.RWMutex
	units    map[string]*model.Unit
	order    []string
	stations []model.Station
}

// NewRegistry builds a registry from already-parsed collections. The slice
// order of units is preserved as the stable listing order. Duplicate unit ids
// are rejected.
func NewRegistry(units []model.Unit, stations []model.Station) (*Registry, error) {
	r := &Registry{
		units:    make(map[string]*model.Unit, len(units)),
		order:    make([]string, 0, len(units)),
		stations: append([]model.Station(nil), stations...),
	}
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.units[u.ID]; ok {
			return nil, fmt.Errorf("duplicate unit id %s", u.ID)
		}
		cp := u
		r.units[u.ID] = &cp
		r.order = append(r.order, u.ID)
	}
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ListByTypeAndStatus returns copies of the units matching both fields, in
// load order.
func (r *Registry) ListByTypeAndStatus(t model.UnitType, s model.UnitStatus) []model.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Unit
	for _, id := range r.order {
		u := r.units[id]
		if u.Type == t && u.Status == s {
			out = append(out, *u)
		}
	}
	return out
}

// Reserve transitions the unit to busy. It returns UnitNotFoundError for an
// unknown id and UnitBusyError if the unit is already busy.
func (r *Registry) Reserve(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return UnitNotFoundError{ID: id}
	}
	if u.Status == model.UnitBusy {
		return UnitBusyError{ID: id}
	}
	u.Status = model.UnitBusy
	return nil
}

// Release transitions the unit back to available once its assignment is
// completed externally.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return UnitNotFoundError{ID: id}
	}
	u.Status = model.UnitAvailable
	return nil
}

// UpdatePosition overwrites the unit's position and station reference
// unconditionally. Callers repositioning idle units should prefer
// UpdatePositionIfAvailable.
func (r *Registry) UpdatePosition(id string, pos model.Coordinate, stationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return UnitNotFoundError{ID: id}
	}
	u.Position = pos
	u.StationID = stationID
	return nil
}

// UpdatePositionIfAvailable applies the position update only if the unit is
// still available and reports whether it did. A unit that turned busy between
// an idle snapshot and the commit is skipped silently: it is about to move as
// part of an active dispatch anyway.
func (r *Registry) UpdatePositionIfAvailable(id string, pos model.Coordinate, stationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return false, UnitNotFoundError{ID: id}
	}
	if u.Status != model.UnitAvailable {
		return false, nil
	}
	u.Position = pos
	u.StationID = stationID
	return true, nil
}

// ResetAll sets every unit back to available and returns how many units were
// busy. It holds the write lock for its whole duration, so it never interleaves
// with an in-flight reservation.
func (r *Registry) ResetAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.units {
		if u.Status == model.UnitBusy {
			n++
		}
		u.Status = model.UnitAvailable
	}
	return n
}

// Snapshot returns consistent copies of the unit and station collections for
// read-only reporting.
func (r *Registry) Snapshot() ([]model.Unit, []model.Station) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := make([]model.Unit, 0, len(r.order))
	for _, id := range r.order {
		units = append(units, *r.units[id])
	}
	stations := append([]model.Station(nil), r.stations...)
	return units, stations
}

// Stations returns a copy of the station collection in input order.
func (r *Registry) Stations() []model.Station {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Station(nil), r.stations...)
}
