package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.NRLDir == "" {
		return errors.New("paths.nrl_dir must be set")
	}
	if c.Paths.IndexPath == "" {
		return errors.New("paths.index_path must be set")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
