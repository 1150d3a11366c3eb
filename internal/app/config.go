package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	logFormats = []string{"text", "json"}
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // manifest files or directories

	LogFormat string
	LogLevel  string
	// Workers bounds how many entries are loaded concurrently.
	Workers int
	// Strict runs the registry parity check while the App is built, failing
	// startup on a manifest that references missing exports.
	Strict bool
	// HealthcheckPort serves health and metrics endpoints while watching
	// manifests. 0 is disabled.
	HealthcheckPort int
}

// NewConfig normalizes and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ManifestPaths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	for _, p := range cfg.ManifestPaths {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("manifest paths cannot be empty")
		}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q: must be one of %s", cfg.LogFormat, strings.Join(logFormats, ", "))
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be one of %s", cfg.LogLevel, strings.Join(logLevels, ", "))
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("invalid worker count %d: must not be negative", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d: must be between 0 and 65535", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
