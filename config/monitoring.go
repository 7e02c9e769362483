package config

// MonitoringConfig exposes internal metrics over HTTP.
type MonitoringConfig struct {
	// PrometheusAddr is the listen address of the /metrics endpoint.
	// Empty disables the endpoint.
	PrometheusAddr string `json:"prometheus_addr"`
}
