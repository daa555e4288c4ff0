// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package record implements the durable record codec for the social
// graph.
//
// # Format
//
// One row per user, newline separated:
//
//	id,username,friends
//
// where friends is a |-joined list of numeric friend ids in ascending
// order. A user with no friends has an empty third field. Rows are
// written in ascending id order so encoding is deterministic and
// diff-friendly.
//
// # Tolerance
//
// Decoding is lenient: a single bad row must not prevent the rest of
// the graph from loading. Blank lines and rows with fewer than two
// fields are skipped; malformed or unknown friend-id tokens are
// dropped from that user's list; duplicate ids or usernames keep the
// first row seen. Adjacency is symmetrized by union, so a hand-edited
// record that lists an edge on only one endpoint still decodes to a
// valid graph.
package record

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gravitymesh/socialgraph/services/social/graph"
)

const (
	fieldSep = ","
	listSep  = "|"
	rowSep   = "\n"
)

// Encode serializes a graph to its durable record form.
//
// Deterministic: rows in ascending id order, friend lists in ascending
// id order. Encode(Decode(b)) is byte-stable and Decode(Encode(g))
// reproduces g.
func Encode(g *graph.Graph) []byte {
	var buf bytes.Buffer
	for _, id := range g.IDs() {
		username, _ := g.Username(id)
		buf.WriteString(strconv.FormatInt(id, 10))
		buf.WriteString(fieldSep)
		buf.WriteString(username)
		buf.WriteString(fieldSep)

		for i, friendID := range g.FriendIDs(id) {
			if i > 0 {
				buf.WriteString(listSep)
			}
			buf.WriteString(strconv.FormatInt(friendID, 10))
		}
		buf.WriteString(rowSep)
	}
	return buf.Bytes()
}

// Decode reconstructs a graph from durable record bytes.
//
// Never fails: undecodable content is skipped with a warning and the
// remainder loads. Empty or nil input yields an empty graph.
func Decode(data []byte) *graph.Graph {
	g := graph.New()

	type pending struct {
		id     int64
		tokens []string
	}

	// Pass 1: register users so friend ids can be resolved regardless
	// of row order.
	var edges []pending
	for lineNo, line := range strings.Split(string(data), rowSep) {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, fieldSep, 3)
		if len(fields) < 2 {
			slog.Warn("skipping record row with too few fields",
				slog.Int("row", lineNo+1))
			continue
		}

		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			slog.Warn("skipping record row with non-numeric id",
				slog.Int("row", lineNo+1),
				slog.String("id", fields[0]))
			continue
		}

		if err := g.PutUser(id, fields[1]); err != nil {
			slog.Warn("skipping record row",
				slog.Int("row", lineNo+1),
				slog.String("error", err.Error()))
			continue
		}

		if len(fields) == 3 && fields[2] != "" {
			edges = append(edges, pending{id: id, tokens: strings.Split(fields[2], listSep)})
		}
	}

	// Pass 2: resolve friend lists against the now-complete user set.
	for _, p := range edges {
		for _, token := range p.tokens {
			if token == "" {
				continue
			}
			friendID, err := strconv.ParseInt(token, 10, 64)
			if err != nil {
				slog.Warn("dropping malformed friend id",
					slog.Int64("user", p.id),
					slog.String("token", token))
				continue
			}
			if err := g.Link(p.id, friendID); err != nil {
				slog.Warn("dropping friend reference",
					slog.Int64("user", p.id),
					slog.Int64("friend", friendID),
					slog.String("error", err.Error()))
			}
		}
	}

	return g
}
