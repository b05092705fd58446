package planlog

import (
	"github.com/kilianp07/powerplan/core/factory"
)

var storeRegistry = factory.NewRegistry[Store]()

// StoreConfig holds the settings shared by the builtin stores.
type StoreConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates a Store from the provided configuration.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	return storeRegistry.Create(cfg)
}

// Backends lists the registered store types.
func Backends() []string { return storeRegistry.Types() }

func decode(conf map[string]any) (StoreConfig, error) {
	var c StoreConfig
	err := factory.Decode(conf, &c)
	return c, err
}

func init() {
	_ = RegisterStore("jsonl", func(conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path)
	})
	_ = RegisterStore("jsonl_rotating", func(conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = RegisterStore("sqlite", func(conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}
