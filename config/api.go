package config

// APIConfig defines the HTTP listener.
type APIConfig struct {
	// Addr is the listen address of the public API.
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
}
