package metrics

import "github.com/kilianp07/powerplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort exposes /metrics when the prom sink is configured.
	PrometheusPort int `json:"prometheus_port"`
}
