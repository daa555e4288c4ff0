// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitymesh/socialgraph/services/social/config"
	"github.com/gravitymesh/socialgraph/services/social/graph"
	"github.com/gravitymesh/socialgraph/services/social/lock"
	"github.com/gravitymesh/socialgraph/services/social/store"
)

// --- Global Command Variables ---
var (
	flagRecord      string
	flagConfig      string
	flagLockTimeout time.Duration
	flagVerbose     bool

	rootCmd = &cobra.Command{
		Use:   "socialgraph",
		Short: "A single-process social-graph engine",
		Long: `socialgraph stores users and symmetric friendship edges in a durable
on-disk record and answers structural queries about them: friends,
mutual friends, connectivity, PageRank influence, friend
recommendations, and username prefix search.

One graph operation runs per invocation. Mutations commit the record
atomically under an advisory lock, so concurrent invocations against
the same record cannot corrupt it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flagVerbose)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRecord, "record", "",
		"Path to the durable record file (default dataset/users.csv)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Path to a YAML config file")
	rootCmd.PersistentFlags().DurationVar(&flagLockTimeout, "lock-timeout", 0,
		"Bounded wait for the record lock (e.g. 5s, 250ms)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false,
		"Enable debug logging")
}

// loadConfig resolves defaults, config file, environment, then flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagRecord != "" {
		cfg.RecordPath = flagRecord
	}
	if flagLockTimeout > 0 {
		cfg.LockTimeout = config.Duration(flagLockTimeout)
	}
	return cfg, nil
}

// newStore builds the record store for this invocation.
func newStore(cfg *config.Config) *store.Store {
	return store.New(cfg.RecordPath, lock.Options{
		Timeout: time.Duration(cfg.LockTimeout),
	})
}

// pageRankOptions maps config to the graph package's option struct.
func pageRankOptions(cfg *config.Config) *graph.PageRankOptions {
	return &graph.PageRankOptions{
		DampingFactor: cfg.PageRank.Damping,
		MaxIterations: cfg.PageRank.MaxIterations,
		Convergence:   cfg.PageRank.Convergence,
	}
}
