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
	"errors"
	"reflect"
	"testing"
)

// buildGraph creates a graph with the given users and edges, failing
// the test on any error.
func buildGraph(t *testing.T, users []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, u := range users {
		if _, err := g.AddUser(u); err != nil {
			t.Fatalf("AddUser(%q) failed: %v", u, err)
		}
	}
	for _, e := range edges {
		if err := g.AddFriend(e[0], e[1]); err != nil {
			t.Fatalf("AddFriend(%q, %q) failed: %v", e[0], e[1], err)
		}
	}
	return g
}

func TestGraph_AddUser(t *testing.T) {
	t.Run("allocates sequential ids from zero", func(t *testing.T) {
		g := New()
		for i, name := range []string{"alice", "bob", "carol"} {
			id, err := g.AddUser(name)
			if err != nil {
				t.Fatalf("AddUser(%q) failed: %v", name, err)
			}
			if id != int64(i) {
				t.Errorf("AddUser(%q) id = %d, want %d", name, id, i)
			}
		}
	})

	t.Run("rejects duplicates case-sensitively", func(t *testing.T) {
		g := buildGraph(t, []string{"alice"}, nil)

		if _, err := g.AddUser("alice"); !errors.Is(err, ErrDuplicateUser) {
			t.Errorf("duplicate AddUser error = %v, want ErrDuplicateUser", err)
		}
		if _, err := g.AddUser("Alice"); err != nil {
			t.Errorf("AddUser(Alice) with different case failed: %v", err)
		}
	})

	t.Run("rejects malformed usernames", func(t *testing.T) {
		g := New()
		for _, name := range []string{"", "a,b", "a|b", "a\nb", "a\rb"} {
			if _, err := g.AddUser(name); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("AddUser(%q) error = %v, want ErrMalformedInput", name, err)
			}
		}
		if g.UserCount() != 0 {
			t.Errorf("failed adds left %d users behind", g.UserCount())
		}
	})

	t.Run("does not reuse the id of the highest removed user", func(t *testing.T) {
		g := buildGraph(t, []string{"alice", "bob"}, nil)
		if err := g.RemoveUser("bob"); err != nil {
			t.Fatal(err)
		}
		id, err := g.AddUser("carol")
		if err != nil {
			t.Fatal(err)
		}
		if id != 2 {
			t.Errorf("id after removal = %d, want 2", id)
		}
	})
}

func TestGraph_RemoveUser(t *testing.T) {
	t.Run("cascades edge removal", func(t *testing.T) {
		// Scenario: bob is the hub between alice and carol.
		g := buildGraph(t, []string{"alice", "bob", "carol"},
			[][2]string{{"alice", "bob"}, {"bob", "carol"}})

		if err := g.RemoveUser("bob"); err != nil {
			t.Fatalf("RemoveUser failed: %v", err)
		}

		for _, u := range []string{"alice", "carol"} {
			friends, err := g.Friends(u)
			if err != nil {
				t.Fatalf("Friends(%q) failed: %v", u, err)
			}
			if len(friends) != 0 {
				t.Errorf("Friends(%q) = %v, want empty after cascade", u, friends)
			}
		}
		if g.EdgeCount() != 0 {
			t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
		}
		if err := g.Validate(); err != nil {
			t.Errorf("invariants broken after cascade: %v", err)
		}
	})

	t.Run("unknown user fails without effect", func(t *testing.T) {
		g := buildGraph(t, []string{"alice"}, nil)
		if err := g.RemoveUser("bob"); !errors.Is(err, ErrUnknownUser) {
			t.Errorf("error = %v, want ErrUnknownUser", err)
		}
		if g.UserCount() != 1 {
			t.Errorf("UserCount = %d, want 1", g.UserCount())
		}
	})
}

func TestGraph_AddFriend(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		wantErr error
	}{
		{"unknown first user", "zed", "bob", ErrUnknownUser},
		{"unknown second user", "alice", "zed", ErrUnknownUser},
		{"self friendship", "alice", "alice", ErrSelfFriend},
		{"existing edge", "alice", "bob", ErrAlreadyFriends},
		{"existing edge reversed", "bob", "alice", ErrAlreadyFriends},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, []string{"alice", "bob"}, [][2]string{{"alice", "bob"}})
			if err := g.AddFriend(tt.a, tt.b); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddFriend(%q, %q) error = %v, want %v", tt.a, tt.b, err, tt.wantErr)
			}
			if g.EdgeCount() != 1 {
				t.Errorf("failed AddFriend changed the graph: EdgeCount = %d", g.EdgeCount())
			}
		})
	}

	t.Run("inserts symmetrically", func(t *testing.T) {
		g := buildGraph(t, []string{"alice", "bob"}, [][2]string{{"alice", "bob"}})

		aFriends, _ := g.Friends("alice")
		bFriends, _ := g.Friends("bob")
		if !reflect.DeepEqual(aFriends, []string{"bob"}) || !reflect.DeepEqual(bFriends, []string{"alice"}) {
			t.Errorf("edge not symmetric: alice=%v bob=%v", aFriends, bFriends)
		}
	})
}

func TestGraph_RemoveFriend(t *testing.T) {
	t.Run("removes both directions", func(t *testing.T) {
		g := buildGraph(t, []string{"alice", "bob", "carol"},
			[][2]string{{"alice", "bob"}, {"bob", "carol"}})

		if err := g.RemoveFriend("bob", "alice"); err != nil {
			t.Fatalf("RemoveFriend failed: %v", err)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("invariants broken: %v", err)
		}
		friends, _ := g.Friends("bob")
		if !reflect.DeepEqual(friends, []string{"carol"}) {
			t.Errorf("Friends(bob) = %v, want [carol]", friends)
		}
	})

	t.Run("missing edge fails", func(t *testing.T) {
		g := buildGraph(t, []string{"alice", "bob"}, nil)
		if err := g.RemoveFriend("alice", "bob"); !errors.Is(err, ErrNotFriends) {
			t.Errorf("error = %v, want ErrNotFriends", err)
		}
	})
}

func TestGraph_Clear(t *testing.T) {
	g := buildGraph(t, []string{"alice", "bob"}, [][2]string{{"alice", "bob"}})

	g.Clear()
	if g.UserCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("after Clear: %d users, %d edges", g.UserCount(), g.EdgeCount())
	}

	// Idempotent: a second clear is the same empty state, and id
	// allocation restarts.
	g.Clear()
	id, err := g.AddUser("dave")
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("first id after Clear = %d, want 0", id)
	}
}

func TestGraph_Friends_Ordering(t *testing.T) {
	// Insertion order deliberately not alphabetical.
	g := buildGraph(t, []string{"bob", "alice", "carol"},
		[][2]string{{"bob", "carol"}, {"bob", "alice"}})

	friends, err := g.Friends("bob")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(friends, []string{"alice", "carol"}) {
		t.Errorf("Friends(bob) = %v, want [alice carol]", friends)
	}
}

func TestGraph_MutualFriends(t *testing.T) {
	g := buildGraph(t, []string{"alice", "bob", "carol", "dave"},
		[][2]string{{"alice", "bob"}, {"carol", "bob"}, {"alice", "dave"}, {"carol", "dave"}})

	t.Run("commutative", func(t *testing.T) {
		ab, err := g.MutualFriends("alice", "carol")
		if err != nil {
			t.Fatal(err)
		}
		ba, err := g.MutualFriends("carol", "alice")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ab, ba) {
			t.Errorf("MutualFriends not commutative: %v vs %v", ab, ba)
		}
		if !reflect.DeepEqual(ab, []string{"bob", "dave"}) {
			t.Errorf("MutualFriends = %v, want [bob dave]", ab)
		}
	})

	t.Run("empty intersection is not an error", func(t *testing.T) {
		mutual, err := g.MutualFriends("bob", "dave")
		if err != nil {
			t.Fatal(err)
		}
		if len(mutual) != 0 {
			t.Errorf("MutualFriends = %v, want empty", mutual)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := g.MutualFriends("alice", "zed"); !errors.Is(err, ErrUnknownUser) {
			t.Errorf("error = %v, want ErrUnknownUser", err)
		}
	})
}

// TestGraph_SymmetryInvariant exercises a mixed mutation sequence and
// checks that adjacency stays symmetric throughout.
func TestGraph_SymmetryInvariant(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c", "d", "e"}, nil)

	steps := []func() error{
		func() error { return g.AddFriend("a", "b") },
		func() error { return g.AddFriend("b", "c") },
		func() error { return g.AddFriend("c", "d") },
		func() error { return g.AddFriend("d", "a") },
		func() error { return g.RemoveFriend("b", "a") },
		func() error { return g.AddFriend("e", "c") },
		func() error { return g.RemoveUser("c") },
		func() error { return g.AddFriend("e", "d") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if err := g.Validate(); err != nil {
			t.Fatalf("invariants broken after step %d: %v", i, err)
		}
	}
}
