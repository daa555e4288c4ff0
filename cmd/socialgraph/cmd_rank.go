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
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	pagerankTop     int
	recommendLimit  int
	recommendScores bool
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// pagerankCmd computes influence scores.
var pagerankCmd = &cobra.Command{
	Use:   "pagerank [USERNAME]",
	Short: "Compute PageRank influence scores",
	Long: `Compute influence scores over the friendship graph with the PageRank
iteration (damping 0.85, dangling mass redistributed uniformly).

With a username, prints that user's score. Without one, prints every
user ranked by score.

Examples:
  socialgraph pagerank alice
  socialgraph pagerank --top 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPageRank,
}

// recommendCmd suggests new friends.
var recommendCmd = &cobra.Command{
	Use:   "recommend USERNAME",
	Short: "Recommend friends-of-friends for a user",
	Long: `Recommend users exactly two hops away, scored by the number of mutual
friends, best first. Ties break alphabetically.

Examples:
  socialgraph recommend alice
  socialgraph recommend alice --limit 3 --scores`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	pagerankCmd.Flags().IntVar(&pagerankTop, "top", 0,
		"Only print the top N users (0 = all)")
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0,
		"Maximum recommendations (0 = configured default)")
	recommendCmd.Flags().BoolVar(&recommendScores, "scores", false,
		"Show mutual friend counts next to each recommendation")

	rootCmd.AddCommand(pagerankCmd)
	rootCmd.AddCommand(recommendCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runPageRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	g, err := newStore(cfg).Load(ctx)
	if err != nil {
		return err
	}
	opts := pageRankOptions(cfg)

	if len(args) == 1 {
		score, err := g.PageRankOf(ctx, args[0], opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatScore(score))
		return nil
	}

	ranked := g.PageRankAll(ctx, pagerankTop, opts)
	if len(ranked) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No users.")
		return nil
	}
	for _, entry := range ranked {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", entry.Username, formatScore(entry.Score))
	}
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	username := args[0]
	ctx := context.Background()

	g, err := newStore(cfg).Load(ctx)
	if err != nil {
		return err
	}

	limit := recommendLimit
	if limit <= 0 {
		limit = cfg.RecommendLimit
	}
	recs, err := g.Recommend(ctx, username, limit)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recommendations.")
		return nil
	}

	parts := make([]string, len(recs))
	for i, rec := range recs {
		if recommendScores {
			parts[i] = fmt.Sprintf("%s (%d mutual)", rec.Username, rec.MutualCount)
		} else {
			parts[i] = rec.Username
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recommendations for %s: %s\n", username, strings.Join(parts, " "))
	return nil
}
