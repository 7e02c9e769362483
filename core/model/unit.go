package model

import (
	"fmt"
	"math"
	"strings"
)

// UnitType identifies the category of an emergency resource.
type UnitType string

const (
	UnitAmbulance UnitType = "ambulance"
	UnitPolice    UnitType = "police"
	UnitFire      UnitType = "fire"
)

// UnitTypes returns the known categories in the fixed order used by
// allocation loops.
func UnitTypes() []UnitType {
	return []UnitType{UnitAmbulance, UnitPolice, UnitFire}
}

// ParseUnitType normalizes the input to lower case and validates it against
// the known categories.
func ParseUnitType(s string) (UnitType, error) {
	t := UnitType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown unit type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known categories.
func (t UnitType) Valid() bool {
	switch t {
	case UnitAmbulance, UnitPolice, UnitFire:
		return true
	}
	return false
}

func (t UnitType) String() string { return string(t) }

// UnitStatus describes whether a unit can be dispatched.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "available"
	UnitBusy      UnitStatus = "busy"
)

// NormalizeStatus lower-cases the input and coerces anything outside the
// known set to UnitAvailable. This is the ingestion rule for fleet data.
func NormalizeStatus(s string) UnitStatus {
	switch st := UnitStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case UnitAvailable, UnitBusy:
		return st
	}
	return UnitAvailable
}

func (s UnitStatus) String() string { return string(s) }

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that both components are finite and within range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("coordinate must be finite")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", c.Lon)
	}
	return nil
}

// Unit represents one physical emergency resource. StationID is informational
// and never consulted for dispatch eligibility.
type Unit struct {
	ID        string
	Type      UnitType
	Position  Coordinate
	Status    UnitStatus
	StationID string
}

// Validate checks that the unit carries a usable identity and position.
// Units with an unknown type are tolerated by the registry but are never
// eligible for dispatch or rebalancing.
func (u Unit) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit id is required")
	}
	if err := u.Position.Validate(); err != nil {
		return fmt.Errorf("unit %s: %w", u.ID, err)
	}
	return nil
}
