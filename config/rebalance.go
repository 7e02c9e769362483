package config

import (
	"fmt"

	"github.com/kilianp07/sirene/infra/ai"
)

// RebalanceConfig selects the placement allocator.
type RebalanceConfig struct {
	// Allocator selects the placement strategy: "heuristic" or "ai".
	Allocator string `json:"allocator"`
	// AI configures the language-model allocator when selected.
	AI ai.Config `json:"ai"`
}

// SetDefaults applies sane defaults.
func (c *RebalanceConfig) SetDefaults() {
	if c.Allocator == "" {
		c.Allocator = "heuristic"
	}
}

// Validate checks mandatory fields.
func (c RebalanceConfig) Validate() error {
	switch c.Allocator {
	case "heuristic":
		return nil
	case "ai":
		if c.AI.APIKey == "" {
			return fmt.Errorf("ai allocator requires an api key")
		}
		return nil
	default:
		return fmt.Errorf("unknown allocator %s", c.Allocator)
	}
}
