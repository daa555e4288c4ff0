// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the engine configuration: the durable record
// path, lock timing, and algorithm limits.
//
// Resolution order, later wins: built-in defaults, then the YAML
// config file, then environment variables. Command-line flags are
// applied by the CLI layer on top of the resolved config.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	// EnvRecordPath overrides the durable record path.
	EnvRecordPath = "SOCIALGRAPH_RECORD"

	// EnvLockTimeout overrides the lock timeout (Go duration syntax).
	EnvLockTimeout = "SOCIALGRAPH_LOCK_TIMEOUT"

	// EnvDebug enables debug logging when set to a non-empty value.
	EnvDebug = "SOCIALGRAPH_DEBUG"

	// EnvConfigPath names the YAML config file when no --config flag
	// is given.
	EnvConfigPath = "SOCIALGRAPH_CONFIG"
)

// DefaultRecordPath is where the durable record lives when nothing
// overrides it. Relative paths resolve against the invocation's
// working directory.
const DefaultRecordPath = "dataset/users.csv"

// Duration wraps time.Duration for YAML ("5s", "250ms") parsing.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the resolved engine configuration.
type Config struct {
	// RecordPath is the durable record file.
	RecordPath string `yaml:"record_path" validate:"required"`

	// LockTimeout bounds the wait for the record lock.
	LockTimeout Duration `yaml:"lock_timeout" validate:"gt=0"`

	// PageRank tuning.
	PageRank PageRankConfig `yaml:"pagerank"`

	// RecommendLimit is the default number of friend recommendations.
	RecommendLimit int `yaml:"recommend_limit" validate:"gt=0"`

	// SearchLimit is the default number of prefix search results.
	SearchLimit int `yaml:"search_limit" validate:"gt=0"`
}

// PageRankConfig tunes the ranking iteration.
type PageRankConfig struct {
	Damping       float64 `yaml:"damping" validate:"gte=0,lte=1"`
	MaxIterations int     `yaml:"max_iterations" validate:"gt=0"`
	Convergence   float64 `yaml:"convergence" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RecordPath:  DefaultRecordPath,
		LockTimeout: Duration(5 * time.Second),
		PageRank: PageRankConfig{
			Damping:       0.85,
			MaxIterations: 100,
			Convergence:   1e-6,
		},
		RecommendLimit: 10,
		SearchLimit:    12,
	}
}

// Load resolves the configuration.
//
// path names a YAML config file; empty falls back to EnvConfigPath,
// and no file at all means defaults. A file that was named explicitly
// but does not exist is an error. Environment overrides apply after
// the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvRecordPath); v != "" {
		cfg.RecordPath = v
	}
	if v := os.Getenv(EnvLockTimeout); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvLockTimeout, err)
		}
		cfg.LockTimeout = Duration(parsed)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Errorf("config field %s fails constraint %q", first.Namespace(), first.Tag())
	}
	return err
}
