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

	"github.com/spf13/cobra"

	"github.com/gravitymesh/socialgraph/services/social/graph"
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// addCmd creates a new user.
var addCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Add a user to the graph",
	Long: `Add a user with no friends. The username must be unique
(case-sensitive), non-empty, and free of the record delimiter
characters , | and newlines.

Examples:
  socialgraph add alice`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

// removeCmd deletes a user and all its edges.
var removeCmd = &cobra.Command{
	Use:   "remove USERNAME",
	Short: "Remove a user and every friendship touching it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

// addFriendCmd inserts a friendship edge.
var addFriendCmd = &cobra.Command{
	Use:     "addFriend USERA USERB",
	Aliases: []string{"add-friend"},
	Short:   "Add a friendship between two users",
	Args:    cobra.ExactArgs(2),
	RunE:    runAddFriend,
}

// removeFriendCmd deletes a friendship edge.
var removeFriendCmd = &cobra.Command{
	Use:     "removeFriend USERA USERB",
	Aliases: []string{"remove-friend"},
	Short:   "Remove a friendship between two users",
	Args:    cobra.ExactArgs(2),
	RunE:    runRemoveFriend,
}

// clearCmd resets the graph.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the graph to empty",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(addFriendCmd)
	rootCmd.AddCommand(removeFriendCmd)
	rootCmd.AddCommand(clearCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	username := args[0]

	err = newStore(cfg).Update(context.Background(), "add user", func(g *graph.Graph) error {
		_, err := g.AddUser(username)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added user: %s\n", username)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	username := args[0]

	err = newStore(cfg).Update(context.Background(), "remove user", func(g *graph.Graph) error {
		return g.RemoveUser(username)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed user: %s\n", username)
	return nil
}

func runAddFriend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, b := args[0], args[1]

	err = newStore(cfg).Update(context.Background(), "add friendship", func(g *graph.Graph) error {
		return g.AddFriend(a, b)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Friendship added between %s and %s\n", a, b)
	return nil
}

func runRemoveFriend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, b := args[0], args[1]

	err = newStore(cfg).Update(context.Background(), "remove friendship", func(g *graph.Graph) error {
		return g.RemoveFriend(a, b)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Friendship removed between %s and %s\n", a, b)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	err = newStore(cfg).Update(context.Background(), "clear graph", func(g *graph.Graph) error {
		g.Clear()
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Graph cleared.")
	return nil
}
