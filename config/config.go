package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/mqtt"
)

// DefaultMaxCombinations caps the fallback search of a configured service.
const DefaultMaxCombinations = 1_000_000

type Config struct {
	Server  ServerConfig    `json:"server"`
	Engine  dispatch.Config `json:"engine"`
	Metrics metrics.Config  `json:"metrics"`
	Logging LoggingConfig   `json:"logging"`
	MQTT    mqtt.Config     `json:"mqtt"`
	Sentry  SentryConfig    `json:"sentry"`
}

// Load reads the configuration file at path and applies environment
// overrides. An empty path only reads the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// K_SERVER__ADDRESS overrides server.address.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Engine.SetDefaults()
	if c.Engine.MaxCombinations == 0 {
		c.Engine.MaxCombinations = DefaultMaxCombinations
	}
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Metrics.PrometheusPort < 0 || c.Metrics.PrometheusPort > 65535 {
		return fmt.Errorf("metrics: invalid prometheus_port %d", c.Metrics.PrometheusPort)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
