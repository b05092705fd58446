package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kilianp07/powerplan/core/factory"
	"github.com/kilianp07/powerplan/core/planlog"
)

// LoggingConfig defines settings for plan log storage and rotation.
type LoggingConfig struct {
	// Backend selects the log store type: "jsonl", "jsonl_rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "plans.jsonl"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if backends := planlog.Backends(); !slices.Contains(backends, c.Backend) {
		return fmt.Errorf("unknown backend %s (want one of %s)", c.Backend, strings.Join(backends, ", "))
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation limits must not be negative")
	}
	return nil
}

// Module returns the store definition understood by planlog.NewStore.
func (c LoggingConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{
		Type: c.Backend,
		Conf: map[string]any{
			"path":         c.Path,
			"max_size_mb":  c.MaxSizeMB,
			"max_backups":  c.MaxBackups,
			"max_age_days": c.MaxAgeDays,
		},
	}
}
