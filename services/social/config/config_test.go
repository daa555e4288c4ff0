// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "socialgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultRecordPath, cfg.RecordPath)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.LockTimeout))
	assert.Equal(t, 0.85, cfg.PageRank.Damping)
	assert.Equal(t, 100, cfg.PageRank.MaxIterations)
	assert.Equal(t, 10, cfg.RecommendLimit)
	assert.Equal(t, 12, cfg.SearchLimit)
}

func TestLoad(t *testing.T) {
	t.Run("no file means defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("file overrides defaults, untouched fields keep them", func(t *testing.T) {
		path := writeConfig(t, `
record_path: /var/lib/socialgraph/users.csv
lock_timeout: 250ms
pagerank:
  damping: 0.9
  max_iterations: 50
  convergence: 1e-8
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/socialgraph/users.csv", cfg.RecordPath)
		assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.LockTimeout))
		assert.Equal(t, 0.9, cfg.PageRank.Damping)
		assert.Equal(t, 50, cfg.PageRank.MaxIterations)
		assert.Equal(t, 12, cfg.SearchLimit, "fields absent from the file keep defaults")
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, "record_path: from-file.csv\n")
		t.Setenv(EnvRecordPath, "from-env.csv")
		t.Setenv(EnvLockTimeout, "1s")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env.csv", cfg.RecordPath)
		assert.Equal(t, time.Second, time.Duration(cfg.LockTimeout))
	})

	t.Run("config file named by env", func(t *testing.T) {
		path := writeConfig(t, "record_path: via-env-config.csv\n")
		t.Setenv(EnvConfigPath, path)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "via-env-config.csv", cfg.RecordPath)
	})

	t.Run("malformed duration in env", func(t *testing.T) {
		t.Setenv(EnvLockTimeout, "soon")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "record_path: [this is\n")
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty record path", func(c *Config) { c.RecordPath = "" }},
		{"zero lock timeout", func(c *Config) { c.LockTimeout = 0 }},
		{"damping above one", func(c *Config) { c.PageRank.Damping = 1.5 }},
		{"negative damping", func(c *Config) { c.PageRank.Damping = -0.1 }},
		{"zero iterations", func(c *Config) { c.PageRank.MaxIterations = 0 }},
		{"zero convergence", func(c *Config) { c.PageRank.Convergence = 0 }},
		{"zero recommend limit", func(c *Config) { c.RecommendLimit = 0 }},
		{"zero search limit", func(c *Config) { c.SearchLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
