// Package store loads and persists fleet data from CSV files.
//
// The loaders are tolerant of messy input: types, statuses and regions are
// lower-cased, unknown statuses are coerced to available, and unparsable
// numeric fields fall back to zero.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kilianp07/sirene/core/model"
)

// header indexes a CSV header row by column name.
type header map[string]int

func readAll(path string) (header, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	h := make(header, len(head))
	for i, name := range head {
		h[strings.TrimSpace(strings.ToLower(name))] = i
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read rows: %w", path, err)
	}
	return h, rows, nil
}

func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) getFloat(row []string, name string) float64 {
	v, err := strconv.ParseFloat(h.get(row, name), 64)
	if err != nil {
		return 0
	}
	return v
}

func (h header) getInt(row []string, name string) int {
	v, err := strconv.Atoi(h.get(row, name))
	if err != nil {
		return 0
	}
	return v
}

// LoadUnits reads a unit roster from a CSV file with columns
// id,type,lat,lon,status,station_id. Rows with an unknown type are
// rejected; an unknown status is coerced to available.
func LoadUnits(path string) ([]model.Unit, error) {
	h, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	units := make([]model.Unit, 0, len(rows))
	for i, row := range rows {
		ut, err := model.ParseUnitType(h.get(row, "type"))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+2, err)
		}
		u := model.Unit{
			ID:        h.get(row, "id"),
			Type:      ut,
			Position:  model.Coordinate{Lat: h.getFloat(row, "lat"), Lon: h.getFloat(row, "lon")},
			Status:    model.NormalizeStatus(h.get(row, "status")),
			StationID: h.get(row, "station_id"),
		}
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+2, err)
		}
		units = append(units, u)
	}
	return units, nil
}

// LoadStations reads station descriptors from a CSV file with columns
// id,region,lat,lon,capacity_ambulance,capacity_police,capacity_fire.
func LoadStations(path string) ([]model.Station, error) {
	h, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	stations := make([]model.Station, 0, len(rows))
	for i, row := range rows {
		s := model.Station{
			ID:       h.get(row, "id"),
			Region:   strings.ToLower(h.get(row, "region")),
			Position: model.Coordinate{Lat: h.getFloat(row, "lat"), Lon: h.getFloat(row, "lon")},
			Capacity: map[model.UnitType]int{
				model.UnitAmbulance: h.getInt(row, "capacity_ambulance"),
				model.UnitPolice:    h.getInt(row, "capacity_police"),
				model.UnitFire:      h.getInt(row, "capacity_fire"),
			},
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+2, err)
		}
		stations = append(stations, s)
	}
	return stations, nil
}

// LoadScenarios reads demand scenarios from a CSV file with columns
// id,region,expected_call_volume. An unparsable volume falls back to zero.
func LoadScenarios(path string) ([]model.Scenario, error) {
	h, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	scenarios := make([]model.Scenario, 0, len(rows))
	for _, row := range rows {
		scenarios = append(scenarios, model.Scenario{
			ID:                 h.get(row, "id"),
			Region:             strings.ToLower(h.get(row, "region")),
			ExpectedCallVolume: h.getFloat(row, "expected_call_volume"),
		})
	}
	return scenarios, nil
}

// SaveUnits writes the roster back out with the same column layout LoadUnits
// reads, so a rebalanced fleet can seed the next run.
func SaveUnits(path string, units []model.Unit) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "type", "lat", "lon", "status", "station_id"}); err != nil {
		return err
	}
	for _, u := range units {
		rec := []string{
			u.ID,
			string(u.Type),
			strconv.FormatFloat(u.Position.Lat, 'f', -1, 64),
			strconv.FormatFloat(u.Position.Lon, 'f', -1, 64),
			string(u.Status),
			u.StationID,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
