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

var connectionShowPath bool

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// friendsCmd lists a user's friends.
var friendsCmd = &cobra.Command{
	Use:   "friends USERNAME",
	Short: "List a user's friends",
	Long: `List the user's friends in alphabetical order.

Examples:
  socialgraph friends bob`,
	Args: cobra.ExactArgs(1),
	RunE: runFriends,
}

// mutualCmd lists shared friends of two users.
var mutualCmd = &cobra.Command{
	Use:   "mutual USERA USERB",
	Short: "List friends two users have in common",
	Args:  cobra.ExactArgs(2),
	RunE:  runMutual,
}

// connectionCmd checks connectivity via BFS.
var connectionCmd = &cobra.Command{
	Use:   "connection USERA USERB",
	Short: "Check whether two users are connected and at what distance",
	Long: `Breadth-first search over friendship edges. Reports the shortest-path
distance when connected; distance 0 means the two names are the same
user.

Examples:
  socialgraph connection alice carol
  socialgraph connection alice carol --path`,
	Args: cobra.ExactArgs(2),
	RunE: runConnection,
}

// usersCmd lists the whole graph.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every user with their friends",
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

func init() {
	connectionCmd.Flags().BoolVar(&connectionShowPath, "path", false,
		"Also print one shortest path")

	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(mutualCmd)
	rootCmd.AddCommand(connectionCmd)
	rootCmd.AddCommand(usersCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runFriends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	username := args[0]

	g, err := newStore(cfg).Load(context.Background())
	if err != nil {
		return err
	}
	friends, err := g.Friends(username)
	if err != nil {
		return err
	}

	if len(friends) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No friends.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Friends of %s: %s\n", username, strings.Join(friends, " "))
	return nil
}

func runMutual(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, b := args[0], args[1]

	g, err := newStore(cfg).Load(context.Background())
	if err != nil {
		return err
	}
	mutual, err := g.MutualFriends(a, b)
	if err != nil {
		return err
	}

	if len(mutual) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No mutual friends.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mutual friends of %s & %s: %s\n", a, b, strings.Join(mutual, " "))
	return nil
}

func runConnection(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, b := args[0], args[1]
	ctx := context.Background()

	g, err := newStore(cfg).Load(ctx)
	if err != nil {
		return err
	}
	result, err := g.Connection(ctx, a, b)
	if err != nil {
		return err
	}

	if !result.Connected {
		fmt.Fprintln(cmd.OutOrStdout(), "not connected")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "connected, distance %d\n", result.Distance)
	if connectionShowPath {
		fmt.Fprintf(cmd.OutOrStdout(), "path: %s\n", strings.Join(result.Path, " -> "))
	}
	return nil
}

func runUsers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	g, err := newStore(cfg).Load(context.Background())
	if err != nil {
		return err
	}

	usernames := g.Usernames()
	if len(usernames) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No users.")
		return nil
	}
	for _, username := range usernames {
		friends, _ := g.Friends(username)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", username, strings.Join(friends, " "))
	}
	return nil
}
