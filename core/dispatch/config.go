package dispatch

// Config holds the dispatcher settings.
type Config struct {
	// MaxAttempts bounds how many times a request re-runs the full selection
	// after losing a reservation race.
	MaxAttempts int `json:"max_attempts"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
}
