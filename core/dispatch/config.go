package dispatch

import (
	"fmt"

	"github.com/kilianp07/powerplan/core/interval"
)

const (
	// DefaultMaxPlants bounds the fleet size accepted by the engine.
	DefaultMaxPlants = 32
	// DefaultMaxTiers bounds the number of distinct marginal costs.
	DefaultMaxTiers = 20
)

// Config bounds the exponential parts of the search.
type Config struct {
	// MaxPlants rejects requests with more power plants.
	MaxPlants int `json:"max_plants"`
	// MaxTiers rejects requests with more distinct cost tiers.
	MaxTiers int `json:"max_tiers"`
	// MaxCombinations caps the sub-interval combinations examined by the
	// fallback search. Zero disables the cap.
	MaxCombinations int `json:"max_combinations"`
}

// SetDefaults fills unset limits.
func (c *Config) SetDefaults() {
	if c.MaxPlants <= 0 {
		c.MaxPlants = DefaultMaxPlants
	}
	if c.MaxTiers <= 0 {
		c.MaxTiers = DefaultMaxTiers
	}
}

// Validate checks the limits can be enumerated.
func (c Config) Validate() error {
	if c.MaxTiers > interval.MaxSubsetItems {
		return fmt.Errorf("max_tiers %d exceeds %d", c.MaxTiers, interval.MaxSubsetItems)
	}
	if c.MaxPlants > interval.MaxSubsetItems {
		return fmt.Errorf("max_plants %d exceeds %d", c.MaxPlants, interval.MaxSubsetItems)
	}
	if c.MaxCombinations < 0 {
		return fmt.Errorf("max_combinations must not be negative")
	}
	return nil
}
