// Package infra groups the adapters plugged behind the core interfaces:
// the MQTT setpoint publisher, the Prometheus and InfluxDB solve sinks,
// the zerolog logger and the Sentry monitor.
package infra
