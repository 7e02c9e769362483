// Package fleet exposes the allocation engine over HTTP. Routes mirror the
// operational surface: request a unit, list the fleet, reset statuses and
// trigger a rebalance.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/sirene/core/dispatch"
	"github.com/kilianp07/sirene/core/events"
	"github.com/kilianp07/sirene/core/fleet"
	"github.com/kilianp07/sirene/core/logger"
	"github.com/kilianp07/sirene/core/model"
	"github.com/kilianp07/sirene/core/rebalance"
	"github.com/kilianp07/sirene/internal/eventbus"
)

// Dispatcher is the dispatch surface the request handler needs.
type Dispatcher interface {
	RequestUnit(reqType string, location model.Coordinate) (dispatch.Assignment, error)
}

// Rebalancer triggers a fleet-wide reposition run.
type Rebalancer interface {
	Rebalance(ctx context.Context, sc model.Scenario) (rebalance.Result, error)
}

type requestBody struct {
	Type     string    `json:"type"`
	Location []float64 `json:"location"`
}

type requestResponse struct {
	Unit string           `json:"unit"`
	From model.Coordinate `json:"from"`
	To   model.Coordinate `json:"to"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewRequestHandler returns an HTTP handler serving POST /api/request.
// The body carries {"type": "...", "location": [lat, lon]}.
func NewRequestHandler(d Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if len(body.Location) != 2 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid location"})
			return
		}
		loc := model.Coordinate{Lat: body.Location[0], Lon: body.Location[1]}
		a, err := d.RequestUnit(body.Type, loc)
		switch {
		case errors.Is(err, dispatch.ErrInvalidRequest):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		case errors.Is(err, dispatch.ErrNoAvailableUnit):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "No available unit"})
			return
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, requestResponse{Unit: a.UnitID, From: a.From, To: a.To})
	})
}

type vehicleEntry struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Status    string  `json:"status"`
	StationID string  `json:"station_id"`
}

// NewVehiclesHandler returns an HTTP handler serving GET /api/vehicles with a
// flat snapshot of every unit.
func NewVehiclesHandler(reg *fleet.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		units, _ := reg.Snapshot()
		entries := make([]vehicleEntry, 0, len(units))
		for _, u := range units {
			entries = append(entries, vehicleEntry{
				ID:        u.ID,
				Type:      u.Type.String(),
				Lat:       u.Position.Lat,
				Lon:       u.Position.Lon,
				Status:    u.Status.String(),
				StationID: u.StationID,
			})
		}
		writeJSON(w, http.StatusOK, entries)
	})
}

// NewResetHandler returns an HTTP handler serving POST /api/reset. Every unit
// goes back to available; positions are untouched.
func NewResetHandler(reg *fleet.Registry, bus eventbus.EventBus, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		released := reg.ResetAll()
		if log != nil {
			log.Infof("reset all vehicles to available (%d released)", released)
		}
		if bus != nil {
			bus.Publish(events.FleetResetEvent{Released: released, Timestamp: time.Now().UTC()})
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "All vehicles reset to available"})
	})
}

type rebalanceBody struct {
	Scenario string `json:"scenario"`
}

type placementEntry struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	StationID string  `json:"station_id"`
}

// NewRebalanceHandler returns an HTTP handler serving POST /api/rebalance.
// The scenario can be named via the "scenario" query parameter or a JSON
// body; when absent, the highest expected_call_volume scenario wins.
func NewRebalanceHandler(rb Rebalancer, scenarios func() []model.Scenario) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("scenario")
		if id == "" && r.Body != nil {
			var body rebalanceBody
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				id = body.Scenario
			}
		}
		sc, err := rebalance.SelectScenario(scenarios(), id)
		if err != nil {
			var notFound rebalance.ScenarioNotFoundError
			if errors.As(err, &notFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		res, err := rb.Rebalance(r.Context(), sc)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		entries := make([]placementEntry, 0, len(res.Placements))
		for _, p := range res.Placements {
			entries = append(entries, placementEntry{
				ID:        p.UnitID,
				Lat:       p.Position.Lat,
				Lon:       p.Position.Lon,
				StationID: p.StationID,
			})
		}
		writeJSON(w, http.StatusOK, entries)
	})
}

// NewMux assembles the API routes on a fresh ServeMux.
func NewMux(d Dispatcher, rb Rebalancer, reg *fleet.Registry, scenarios func() []model.Scenario, bus eventbus.EventBus, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/request", NewRequestHandler(d))
	mux.Handle("/api/vehicles", NewVehiclesHandler(reg))
	mux.Handle("/api/reset", NewResetHandler(reg, bus, log))
	mux.Handle("/api/rebalance", NewRebalanceHandler(rb, scenarios))
	return mux
}
