package config

import (
	"errors"
	"fmt"
	"strings"
)

var validInterpolations = map[string]struct{}{
	"area":     {},
	"bilinear": {},
	"bicubic":  {},
	"lanczos3": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.Matching.Validate(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.RegionsDir) == "" {
		return errors.New("paths.regions_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LocalisationDir) == "" {
		return errors.New("paths.localisation_dir must be set")
	}
	if c.Paths.RegionsDir == c.Paths.LocalisationDir {
		return fmt.Errorf("paths.regions_dir and paths.localisation_dir must differ (both %s)", c.Paths.RegionsDir)
	}
	return nil
}

// Validate checks the ranking knobs. It is exported so per-run overrides
// can be checked without reloading the whole configuration.
func (m Matching) Validate() error {
	if m.Threshold < -1 || m.Threshold > 1 {
		return errors.New("matching.threshold must be between -1 and 1")
	}
	if m.DeltaSecond < 0 || m.DeltaSecond > 2 {
		return errors.New("matching.delta_second must be between 0 and 2")
	}
	if m.Workers <= 0 {
		return errors.New("matching.workers must be positive")
	}
	if _, ok := validInterpolations[m.Interpolation]; !ok {
		return fmt.Errorf("matching.interpolation: unsupported value %q (use area, bilinear, bicubic or lanczos3)", m.Interpolation)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
