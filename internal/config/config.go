// Package config loads weighttracker settings from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all weighttracker configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`

	// Unit is the label printed next to weights. Values are never converted.
	Unit string `yaml:"unit"`
}

// StoreConfig selects the record backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // csv, sqlite, postgres, memory
	Path   string `yaml:"path"`   // file for csv and sqlite
	DSN    string `yaml:"dsn"`    // connection string for postgres
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Store: StoreConfig{Driver: DriverCSV, Path: "data.csv"},
		Log:   LogConfig{Level: "warn"},
		Unit:  "kg",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// $WEIGHT_CONFIG when path is empty), then environment overrides. A file
// that was named explicitly must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("WEIGHT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Store.Driver = env("WEIGHT_STORE", c.Store.Driver)
	c.Store.Path = env("WEIGHT_FILE", c.Store.Path)
	c.Store.DSN = env("DATABASE_URL", c.Store.DSN)
	c.Log.Level = env("WEIGHT_LOG_LEVEL", c.Log.Level)
	c.Unit = env("WEIGHT_UNIT", c.Unit)
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverCSV, DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("config: store.path is required for the %s driver", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("config: store.dsn (or DATABASE_URL) is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown store driver %q (want csv, sqlite, postgres or memory)", c.Store.Driver)
	}
	if c.Unit == "" {
		return errors.New("config: unit must not be empty")
	}
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
