// Package config loads, normalizes, and validates treasurepicker configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TREASUREPICKER_MAPS_DIR. The Config type centralizes the gallery directories,
// the matching thresholds, the decoded-image cache and logging knobs so the CLI
// can discover everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, bounded thresholds, and clear validation errors.
package config
