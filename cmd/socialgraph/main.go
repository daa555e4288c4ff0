// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command socialgraph is the social-graph engine CLI.
//
// Each invocation performs exactly one graph operation against the
// durable record: it loads the record, runs one query or mutation, and
// for mutations commits the new record atomically. There is no
// long-running process owning the data; concurrent invocations are
// serialized by an advisory lock on the record.
//
// Usage:
//
//	socialgraph add alice
//	socialgraph addFriend alice bob
//	socialgraph friends bob
//	socialgraph connection alice carol
//	socialgraph pagerank alice
//	socialgraph recommend alice --limit 5
//	socialgraph search al
//
// The record path comes from --record, SOCIALGRAPH_RECORD, or the
// config file; it defaults to dataset/users.csv. Arguments arrive
// verbatim from whatever wraps the CLI and are validated, never
// trusted.
//
// Exit status: 0 on success; 1 on any domain failure (unknown user,
// duplicate user, malformed input, unreadable record); 2 when the
// record lock could not be acquired within the timeout.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/gravitymesh/socialgraph/services/social/config"
)

func main() {
	// A .env next to the invocation is a convenience for wrappers;
	// absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// setupLogging installs the default slog handler. Called from the root
// command's PersistentPreRun once flags are parsed.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose || os.Getenv(config.EnvDebug) != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
