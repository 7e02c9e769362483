// Package dispatch implements the nearest-unit dispatcher with exclusive
// reservation semantics.
package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/sirene/core/events"
	"github.com/kilianp07/sirene/core/fleet"
	"github.com/kilianp07/sirene/core/geo"
	"github.com/kilianp07/sirene/core/logger"
	"github.com/kilianp07/sirene/core/metrics"
	"github.com/kilianp07/sirene/core/model"
	"github.com/kilianp07/sirene/internal/eventbus"
)

// ErrInvalidRequest reports a malformed unit type or location. It is never
// retried by the engine.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNoAvailableUnit reports that no eligible unit exists for a well-formed
// request. It is an expected business outcome the caller must handle, not a
// system fault.
var ErrNoAvailableUnit = errors.New("no available unit")

// Assignment is the result of a successful dispatch: the reserved unit, its
// origin position and the incident location.
type Assignment struct {
	RequestID  string
	UnitID     string
	UnitType   model.UnitType
	From       model.Coordinate
	To         model.Coordinate
	DistanceKm float64
}

// Fleet is the registry surface the dispatcher needs.
type Fleet interface {
	ListByTypeAndStatus(t model.UnitType, s model.UnitStatus) []model.Unit
	Reserve(id string) error
}

// Manager matches incident requests to the closest available unit and
// reserves it atomically. The read-candidates-then-reserve sequence is a
// check-then-act race under concurrency; losing a reservation re-runs the
// full selection against the refreshed candidate set, bounded by MaxAttempts.
type Manager struct {
	fleet       Fleet
	maxAttempts int
	logger      logger.Logger
	metrics     metrics.MetricsSink
	bus         eventbus.EventBus
}

// NewManager creates a dispatcher over the given fleet. sink, bus and log may
// be nil; cfg zero values fall back to defaults.
func NewManager(fl Fleet, cfg Config, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Manager, error) {
	if fl == nil {
		return nil, fmt.Errorf("dispatch: nil fleet provided to NewManager")
	}
	cfg.SetDefaults()
	if log == nil {
		log = nopLogger{}
	}
	return &Manager{
		fleet:       fl,
		maxAttempts: cfg.MaxAttempts,
		logger:      log,
		metrics:     sink,
		bus:         bus,
	}, nil
}

// RequestUnit finds the closest available unit of the requested type relative
// to the incident location and reserves it. The tie-break between equidistant
// candidates is the registry listing order, so selection is deterministic.
func (m *Manager) RequestUnit(reqType string, location model.Coordinate) (Assignment, error) {
	t, err := model.ParseUnitType(reqType)
	if err != nil {
		return Assignment{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := location.Validate(); err != nil {
		return Assignment{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	start := time.Now()
	defer func() {
		selectionLatency.WithLabelValues(t.String()).Observe(time.Since(start).Seconds())
	}()

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		candidates := m.fleet.ListByTypeAndStatus(t, model.UnitAvailable)
		if len(candidates) == 0 {
			m.logger.Infof("no available unit for type=%s", t)
			requestsTotal.WithLabelValues(t.String(), "no_unit").Inc()
			if m.bus != nil {
				m.bus.Publish(events.NoUnitEvent{UnitType: t, Location: location, Timestamp: time.Now()})
			}
			return Assignment{}, ErrNoAvailableUnit
		}

		best, dist := closest(candidates, location)
		err := m.fleet.Reserve(best.ID)
		var busy fleet.UnitBusyError
		switch {
		case err == nil:
			asn := Assignment{
				RequestID:  uuid.NewString(),
				UnitID:     best.ID,
				UnitType:   t,
				From:       best.Position,
				To:         location,
				DistanceKm: dist,
			}
			m.finish(asn, attempt)
			return asn, nil
		case errors.As(err, &busy):
			// lost the race: another request claimed the unit between the
			// listing and the reservation, re-select from fresh state
			reservationConflicts.Inc()
			m.logger.Debugf("unit %s claimed concurrently, re-selecting (attempt %d/%d)", best.ID, attempt, m.maxAttempts)
		default:
			requestsTotal.WithLabelValues(t.String(), "error").Inc()
			return Assignment{}, err
		}
	}

	// the pool drained under contention before a reservation stuck
	m.logger.Warnf("gave up dispatching type=%s after %d attempts", t, m.maxAttempts)
	requestsTotal.WithLabelValues(t.String(), "no_unit").Inc()
	if m.bus != nil {
		m.bus.Publish(events.NoUnitEvent{UnitType: t, Location: location, Timestamp: time.Now()})
	}
	return Assignment{}, ErrNoAvailableUnit
}

func (m *Manager) finish(asn Assignment, attempts int) {
	m.logger.Infof("assigned %s (%s) from (%.4f, %.4f) to incident at (%.4f, %.4f)",
		asn.UnitID, asn.UnitType, asn.From.Lat, asn.From.Lon, asn.To.Lat, asn.To.Lon)
	requestsTotal.WithLabelValues(asn.UnitType.String(), "assigned").Inc()
	now := time.Now()
	if m.bus != nil {
		m.bus.Publish(events.AssignmentEvent{
			RequestID:  asn.RequestID,
			UnitID:     asn.UnitID,
			UnitType:   asn.UnitType,
			From:       asn.From,
			To:         asn.To,
			DistanceKm: asn.DistanceKm,
			Attempts:   attempts,
			Timestamp:  now,
		})
	}
	if m.metrics != nil {
		rec := metrics.AssignmentRecord{
			RequestID:  asn.RequestID,
			UnitID:     asn.UnitID,
			UnitType:   asn.UnitType,
			DistanceKm: asn.DistanceKm,
			Attempts:   attempts,
			Timestamp:  now,
		}
		if err := m.metrics.RecordAssignments([]metrics.AssignmentRecord{rec}); err != nil {
			m.logger.Errorf("metrics error: %v", err)
		}
	}
}

// closest returns the nearest candidate and its distance. On equal distances
// the earlier candidate wins.
func closest(candidates []model.Unit, loc model.Coordinate) (model.Unit, float64) {
	best := candidates[0]
	bestDist := geo.Distance(loc, best.Position)
	for _, u := range candidates[1:] {
		if d := geo.Distance(loc, u.Position); d < bestDist {
			best = u
			bestDist = d
		}
	}
	return best, bestDist
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
