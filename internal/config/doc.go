// Package config loads and validates the resprint TOML configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/resprint/config.toml, then ./resprint.toml. Missing files fall
// back to repository defaults so the tool runs without any configuration.
package config
