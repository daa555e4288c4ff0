// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"sort"
	"strings"
)

// recordDelimiters are characters a username may never contain because
// they structure the durable record (field separator, friend-list
// separator, row separator).
const recordDelimiters = ",|\n\r"

// Graph is the in-memory social graph.
//
// It holds the bijective id/username mapping and the symmetric
// adjacency sets. A Graph is reconstructed from the durable record at
// the start of every invocation and discarded at the end.
type Graph struct {
	usernames map[int64]string
	ids       map[string]int64
	adj       map[int64]map[int64]struct{}

	// maxID is the high-water id within this instance. New ids are
	// allocated one past it so an id is never reused during the
	// lifetime of a loaded graph.
	maxID int64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		usernames: make(map[int64]string),
		ids:       make(map[string]int64),
		adj:       make(map[int64]map[int64]struct{}),
		maxID:     -1,
	}
}

// ValidateUsername checks that a username is usable as a graph node.
//
// Usernames must be non-empty and must not contain any record
// delimiter character. Returns ErrMalformedInput otherwise.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: empty username", ErrMalformedInput)
	}
	if strings.ContainsAny(username, recordDelimiters) {
		return fmt.Errorf("%w: username %q contains a delimiter character", ErrMalformedInput, username)
	}
	return nil
}

// =============================================================================
// Mutations
// =============================================================================

// AddUser creates a new user with no friends and returns its id.
//
// Fails with ErrMalformedInput for invalid usernames and
// ErrDuplicateUser if the username already exists. The new id is one
// past the highest id this instance has seen, or 0 for an empty graph.
func (g *Graph) AddUser(username string) (int64, error) {
	if err := ValidateUsername(username); err != nil {
		return 0, err
	}
	if _, ok := g.ids[username]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateUser, username)
	}

	id := g.maxID + 1
	g.usernames[id] = username
	g.ids[username] = id
	g.adj[id] = make(map[int64]struct{})
	g.maxID = id
	return id, nil
}

// RemoveUser deletes a user and every edge incident to it.
//
// Fails with ErrUnknownUser if the username does not exist. The
// cascading edge removal is a single in-memory transformation: either
// the user and all its edges are gone, or nothing changed.
func (g *Graph) RemoveUser(username string) error {
	id, ok := g.ids[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}

	for friendID := range g.adj[id] {
		delete(g.adj[friendID], id)
	}
	delete(g.adj, id)
	delete(g.usernames, id)
	delete(g.ids, username)
	return nil
}

// AddFriend inserts the symmetric friendship edge {a, b}.
//
// Fails with ErrUnknownUser if either user is absent, ErrSelfFriend if
// a == b, and ErrAlreadyFriends if the edge exists.
func (g *Graph) AddFriend(a, b string) error {
	idA, idB, err := g.resolvePair(a, b)
	if err != nil {
		return err
	}
	if idA == idB {
		return fmt.Errorf("%w: %s", ErrSelfFriend, a)
	}
	if _, ok := g.adj[idA][idB]; ok {
		return fmt.Errorf("%w: %s and %s", ErrAlreadyFriends, a, b)
	}

	g.adj[idA][idB] = struct{}{}
	g.adj[idB][idA] = struct{}{}
	return nil
}

// RemoveFriend deletes the symmetric friendship edge {a, b}.
//
// Fails with ErrUnknownUser if either user is absent and ErrNotFriends
// if the edge does not exist. Removing the pair (a, a) reports
// ErrNotFriends since self-loops never exist.
func (g *Graph) RemoveFriend(a, b string) error {
	idA, idB, err := g.resolvePair(a, b)
	if err != nil {
		return err
	}
	if _, ok := g.adj[idA][idB]; !ok {
		return fmt.Errorf("%w: %s and %s", ErrNotFriends, a, b)
	}

	delete(g.adj[idA], idB)
	delete(g.adj[idB], idA)
	return nil
}

// Clear resets the graph to its empty state. Always succeeds and is
// idempotent.
func (g *Graph) Clear() {
	g.usernames = make(map[int64]string)
	g.ids = make(map[string]int64)
	g.adj = make(map[int64]map[int64]struct{})
	g.maxID = -1
}

// =============================================================================
// Record restoration (used by the record codec)
// =============================================================================

// PutUser restores a user with an explicit id, as read from a durable
// record row.
//
// Fails with ErrMalformedInput for invalid usernames or negative ids,
// ErrDuplicateID if the id is taken, and ErrDuplicateUser if the
// username is taken.
func (g *Graph) PutUser(id int64, username string) error {
	if id < 0 {
		return fmt.Errorf("%w: negative id %d", ErrMalformedInput, id)
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if _, ok := g.usernames[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	if _, ok := g.ids[username]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUser, username)
	}

	g.usernames[id] = username
	g.ids[username] = id
	g.adj[id] = make(map[int64]struct{})
	if id > g.maxID {
		g.maxID = id
	}
	return nil
}

// Link restores the edge {a, b} by id, symmetrically and
// idempotently.
//
// Unlike AddFriend it tolerates pre-existing edges, so a record row
// listing an edge already installed from the other endpoint's row is
// not an error. Self references and unknown ids are rejected with
// ErrSelfFriend and ErrUnknownUser.
func (g *Graph) Link(a, b int64) error {
	if a == b {
		return fmt.Errorf("%w: id %d", ErrSelfFriend, a)
	}
	if _, ok := g.usernames[a]; !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownUser, a)
	}
	if _, ok := g.usernames[b]; !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownUser, b)
	}

	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// UserCount returns the number of live users.
func (g *Graph) UserCount() int {
	return len(g.usernames)
}

// EdgeCount returns the number of friendship edges (unordered pairs).
func (g *Graph) EdgeCount() int {
	total := 0
	for _, friends := range g.adj {
		total += len(friends)
	}
	return total / 2
}

// ID returns the id for a username.
func (g *Graph) ID(username string) (int64, bool) {
	id, ok := g.ids[username]
	return id, ok
}

// Username returns the username for an id.
func (g *Graph) Username(id int64) (string, bool) {
	name, ok := g.usernames[id]
	return name, ok
}

// HasUser reports whether a username exists.
func (g *Graph) HasUser(username string) bool {
	_, ok := g.ids[username]
	return ok
}

// IDs returns all live user ids in ascending order.
func (g *Graph) IDs() []int64 {
	ids := make([]int64, 0, len(g.usernames))
	for id := range g.usernames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Usernames returns all live usernames in lexicographic order.
func (g *Graph) Usernames() []string {
	names := make([]string, 0, len(g.ids))
	for name := range g.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FriendIDs returns a user's adjacency set as ascending ids.
func (g *Graph) FriendIDs(id int64) []int64 {
	friends := make([]int64, 0, len(g.adj[id]))
	for friendID := range g.adj[id] {
		friends = append(friends, friendID)
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i] < friends[j] })
	return friends
}

// Friends returns a user's friend usernames in lexicographic order.
//
// Fails with ErrUnknownUser if the username does not exist. An empty
// list is a valid result.
func (g *Graph) Friends(username string) ([]string, error) {
	id, ok := g.ids[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}

	names := make([]string, 0, len(g.adj[id]))
	for friendID := range g.adj[id] {
		names = append(names, g.usernames[friendID])
	}
	sort.Strings(names)
	return names, nil
}

// MutualFriends returns the intersection of two users' friend sets in
// lexicographic order.
//
// Fails with ErrUnknownUser if either username is absent. An empty
// intersection is a valid result. The operation is commutative.
func (g *Graph) MutualFriends(a, b string) ([]string, error) {
	idA, idB, err := g.resolvePair(a, b)
	if err != nil {
		return nil, err
	}

	// Iterate the smaller set, probe the larger.
	small, large := g.adj[idA], g.adj[idB]
	if len(large) < len(small) {
		small, large = large, small
	}

	names := make([]string, 0)
	for id := range small {
		if _, ok := large[id]; ok {
			names = append(names, g.usernames[id])
		}
	}
	sort.Strings(names)
	return names, nil
}

// resolvePair maps two usernames to ids, failing with ErrUnknownUser
// on the first absent one.
func (g *Graph) resolvePair(a, b string) (int64, int64, error) {
	idA, ok := g.ids[a]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownUser, a)
	}
	idB, ok := g.ids[b]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownUser, b)
	}
	return idA, idB, nil
}

// Validate checks the structural invariants.
//
// Intended for tests and for auditing hand-edited records: a graph
// built through the public API cannot violate them.
func (g *Graph) Validate() error {
	if len(g.usernames) != len(g.ids) {
		return fmt.Errorf("id/username maps disagree: %d ids, %d usernames", len(g.usernames), len(g.ids))
	}
	for id, name := range g.usernames {
		if err := ValidateUsername(name); err != nil {
			return fmt.Errorf("user %d: %w", id, err)
		}
		if back, ok := g.ids[name]; !ok || back != id {
			return fmt.Errorf("username mapping for %q is not bijective", name)
		}
	}
	for id, friends := range g.adj {
		if _, ok := g.usernames[id]; !ok {
			return fmt.Errorf("adjacency set for dead user id %d", id)
		}
		for friendID := range friends {
			if friendID == id {
				return fmt.Errorf("self-loop on user id %d", id)
			}
			if _, ok := g.usernames[friendID]; !ok {
				return fmt.Errorf("dangling friend id %d on user %d", friendID, id)
			}
			if _, ok := g.adj[friendID][id]; !ok {
				return fmt.Errorf("asymmetric edge %d -> %d", id, friendID)
			}
		}
	}
	return nil
}
