// Package config provides configuration management for Meridian.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//	cfg, err := config.LoadConfig("meridian.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("meridian.yaml")
//
// The second form additionally applies MERIDIAN_* environment variables
// after the file has been read, so deployments can override individual
// fields without editing the file. Environment variables always take
// precedence over file-based configuration.
package config
