package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeGallery()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(mapsDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.MapsDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.MapsDir) == "" {
		c.Paths.MapsDir = defaultMapsDir
	}
	var err error
	if c.Paths.MapsDir, err = expandPath(strings.TrimSpace(c.Paths.MapsDir)); err != nil {
		return fmt.Errorf("paths.maps_dir: %w", err)
	}
	if c.Paths.RegionsDir, err = c.underMaps(c.Paths.RegionsDir, defaultRegionsDir); err != nil {
		return fmt.Errorf("paths.regions_dir: %w", err)
	}
	if c.Paths.LocalisationDir, err = c.underMaps(c.Paths.LocalisationDir, defaultLocalisationDir); err != nil {
		return fmt.Errorf("paths.localisation_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// underMaps resolves a collection directory. Relative values are joined to
// the maps directory; tilde and absolute values are taken as-is.
func (c *Config) underMaps(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if strings.HasPrefix(value, "~") || filepath.IsAbs(value) {
		return expandPath(value)
	}
	return expandPath(filepath.Join(c.Paths.MapsDir, value))
}

func (c *Config) normalizeMatching() {
	c.Matching.Interpolation = strings.ToLower(strings.TrimSpace(c.Matching.Interpolation))
	if c.Matching.Interpolation == "" {
		c.Matching.Interpolation = defaultInterpolation
	}
	if c.Matching.Workers <= 0 {
		c.Matching.Workers = defaultWorkers()
	}
}

func (c *Config) normalizeGallery() {
	if len(c.Gallery.Extensions) == 0 {
		c.Gallery.Extensions = append([]string(nil), defaultExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Gallery.Extensions))
	seen := make(map[string]struct{}, len(c.Gallery.Extensions))
	for _, ext := range c.Gallery.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append([]string(nil), defaultExtensions...)
	}
	c.Gallery.Extensions = exts
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	var err error
	if c.Cache.Dir, err = expandPath(strings.TrimSpace(c.Cache.Dir)); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
