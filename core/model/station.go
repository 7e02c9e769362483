package model

import "fmt"

// Station is a fixed facility hosting units, with a per-type housing capacity.
type Station struct {
	ID       string
	Region   string // lower-cased on ingestion, matched against scenario regions
	Position Coordinate
	Capacity map[UnitType]int
}

// CapacityFor returns the housing capacity for the given type. A missing
// entry counts as zero, meaning the station cannot house that type.
func (s Station) CapacityFor(t UnitType) int {
	if s.Capacity == nil {
		return 0
	}
	return s.Capacity[t]
}

// Validate checks identity, position and that no capacity is negative.
func (s Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station id is required")
	}
	if err := s.Position.Validate(); err != nil {
		return fmt.Errorf("station %s: %w", s.ID, err)
	}
	for t, c := range s.Capacity {
		if c < 0 {
			return fmt.Errorf("station %s: negative capacity for %s", s.ID, t)
		}
	}
	return nil
}
