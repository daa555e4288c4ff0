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
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitymesh/socialgraph/services/social/index"
)

var searchLimit int

// searchCmd finds usernames by prefix.
var searchCmd = &cobra.Command{
	Use:   "search PREFIX",
	Short: "Find usernames starting with a prefix",
	Long: `Case-sensitive prefix search over all usernames, alphabetical, comma
joined. An empty prefix matches nothing. Never fails: no match prints
an empty result.

Examples:
  socialgraph search al`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0,
		"Maximum matches (0 = configured default)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prefix := args[0]

	g, err := newStore(cfg).Load(context.Background())
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.SearchLimit
	}

	// The trie is rebuilt per invocation; it is derived state, never
	// persisted.
	trie := index.Build(g.Usernames())
	matches := trie.Search(prefix, limit)

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(matches, ","))
	return nil
}
