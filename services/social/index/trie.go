// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index provides prefix search over usernames.
//
// The trie is a derived, disposable structure: it is rebuilt from the
// graph's username set by any invocation that needs it and never
// persisted.
package index

import "sort"

// DefaultSearchLimit caps prefix search results when the caller does
// not override it.
const DefaultSearchLimit = 12

// Trie is a byte-wise prefix tree over usernames.
//
// Matching is exact and case-sensitive. Traversal visits children in
// ascending byte order, so results come out in lexicographic order
// without a post-sort.
type Trie struct {
	root *trieNode
	size int
}

type trieNode struct {
	children map[byte]*trieNode
	terminal bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

// New creates an empty trie.
func New() *Trie {
	return &Trie{root: newTrieNode()}
}

// Build creates a trie over the given usernames.
func Build(usernames []string) *Trie {
	t := New()
	for _, name := range usernames {
		t.Insert(name)
	}
	return t
}

// Insert adds one username. Empty strings and duplicates are no-ops.
func (t *Trie) Insert(username string) {
	if username == "" {
		return
	}
	cur := t.root
	for i := 0; i < len(username); i++ {
		c := username[i]
		next, ok := cur.children[c]
		if !ok {
			next = newTrieNode()
			cur.children[c] = next
		}
		cur = next
	}
	if !cur.terminal {
		cur.terminal = true
		t.size++
	}
}

// Len returns the number of distinct usernames in the trie.
func (t *Trie) Len() int {
	return t.size
}

// Search returns usernames beginning with prefix, lexicographically
// ordered and truncated to limit (<= 0 means DefaultSearchLimit).
//
// An empty prefix returns nil: "no query" means "show nothing", not
// "show everything".
func (t *Trie) Search(prefix string, limit int) []string {
	if prefix == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	cur := t.root
	for i := 0; i < len(prefix); i++ {
		next, ok := cur.children[prefix[i]]
		if !ok {
			return nil
		}
		cur = next
	}

	results := make([]string, 0, limit)
	collect(cur, []byte(prefix), limit, &results)
	return results
}

// collect walks the subtree depth-first in ascending byte order,
// appending completed usernames until limit is reached.
func collect(n *trieNode, word []byte, limit int, out *[]string) {
	if len(*out) >= limit {
		return
	}
	if n.terminal {
		*out = append(*out, string(word))
	}

	keys := make([]byte, 0, len(n.children))
	for c := range n.children {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, c := range keys {
		if len(*out) >= limit {
			return
		}
		collect(n.children[c], append(word, c), limit, out)
	}
}
