package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address string `json:"address"`
	// Token protects the plan log endpoint. Empty leaves it open.
	Token            string `json:"token"`
	RequestTimeoutMS int    `json:"request_timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8888"
	}
	if c.RequestTimeoutMS <= 0 {
		c.RequestTimeoutMS = 10_000
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

// RequestTimeout returns the time budget of one production plan request.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
