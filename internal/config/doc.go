// Package config provides configuration loading and validation for the
// segmentation pipeline. It handles YAML-based configuration with struct
// validation, immutable resolution of derived paths, and analysis-resolution
// adjustment for short signals that returns a new value instead of mutating
// shared state.
package config
