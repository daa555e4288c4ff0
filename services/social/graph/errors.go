// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the in-memory social graph and its queries.
//
// The graph maps stable numeric user ids to usernames and keeps a
// symmetric adjacency structure for friendship edges. Nodes are users,
// edges are unordered friend pairs.
//
// # Invariants
//
// Every mutation preserves, and every constructor establishes:
//  1. Every id in every adjacency set belongs to a live user.
//  2. Adjacency is symmetric: b in adj[a] iff a in adj[b].
//  3. No self-loops: a is never in adj[a].
//  4. Usernames are unique, non-empty, and free of record delimiters.
//
// Failed mutations have no partial effect: all validation happens
// before the first write to any internal map.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use. Each command invocation owns
// its own instance, reconstructed from the durable record; cross
// invocation safety is the store package's job.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrUnknownUser is returned when an operation names a username
	// that does not exist in the graph.
	ErrUnknownUser = errors.New("user not found")

	// ErrDuplicateUser is returned when adding a user whose username
	// already exists (case-sensitive exact match).
	ErrDuplicateUser = errors.New("user already exists")

	// ErrSelfFriend is returned when attempting to befriend a user
	// with itself.
	ErrSelfFriend = errors.New("cannot befriend self")

	// ErrAlreadyFriends is returned when adding a friendship edge that
	// is already present.
	ErrAlreadyFriends = errors.New("already friends")

	// ErrNotFriends is returned when removing a friendship edge that
	// does not exist.
	ErrNotFriends = errors.New("not friends")

	// ErrMalformedInput is returned for empty usernames or usernames
	// containing record delimiter characters.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDuplicateID is returned when restoring a record row whose id
	// is already taken.
	ErrDuplicateID = errors.New("duplicate user id")
)
