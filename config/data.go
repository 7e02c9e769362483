package config

import "fmt"

// DataConfig locates the CSV files that seed the fleet at startup.
type DataConfig struct {
	// Vehicles is the unit roster file.
	Vehicles string `json:"vehicles"`
	// Stations is the station descriptor file.
	Stations string `json:"stations"`
	// Factors is the demand scenario file.
	Factors string `json:"factors"`
}

// SetDefaults applies the conventional file names.
func (c *DataConfig) SetDefaults() {
	if c.Vehicles == "" {
		c.Vehicles = "vehicles.csv"
	}
	if c.Stations == "" {
		c.Stations = "stations.csv"
	}
	if c.Factors == "" {
		c.Factors = "factors.csv"
	}
}

// Validate checks mandatory fields.
func (c DataConfig) Validate() error {
	if c.Vehicles == "" {
		return fmt.Errorf("vehicles file is required")
	}
	if c.Stations == "" {
		return fmt.Errorf("stations file is required")
	}
	return nil
}
