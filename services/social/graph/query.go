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
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var queryTracer = otel.Tracer("social.graph.query")

// ConnectionResult describes the outcome of a connectivity query.
type ConnectionResult struct {
	// Connected is true if a path exists between the two users.
	Connected bool

	// Distance is the number of edges on a shortest path.
	// 0 iff the endpoints are the same user; -1 when not connected.
	Distance int

	// Path is one shortest path as usernames, source first.
	// Deterministic: BFS expands neighbors in ascending id order.
	// Empty when not connected.
	Path []string
}

// Connection finds the shortest unweighted path between two users.
//
// Description:
//
//	Breadth-first search treating friendship edges as undirected.
//	Nodes are marked on enqueue so each is visited at most once, and
//	neighbors are expanded in ascending id order so equal-distance
//	tie-breaking is reproducible across invocations.
//
// Inputs:
//
//	ctx - Context for cancellation
//	a, b - Endpoint usernames
//
// Outputs:
//
//	*ConnectionResult - Distance and one shortest path, or not connected
//	error - ErrUnknownUser if either endpoint is absent
func (g *Graph) Connection(ctx context.Context, a, b string) (*ConnectionResult, error) {
	ctx, span := queryTracer.Start(ctx, "Graph.Connection",
		trace.WithAttributes(
			attribute.Int("user_count", g.UserCount()),
			attribute.Int("edge_count", g.EdgeCount()),
		),
	)
	defer span.End()

	from, to, err := g.resolvePair(a, b)
	if err != nil {
		return nil, err
	}

	// Same user: distance 0 by definition.
	if from == to {
		return &ConnectionResult{Connected: true, Distance: 0, Path: []string{a}}, nil
	}

	visited := map[int64]bool{from: true}
	parent := make(map[int64]int64)
	queue := []int64{from}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("connection query cancelled: %w", err)
		}

		current := queue[0]
		queue = queue[1:]

		for _, next := range g.FriendIDs(current) {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current

			if next == to {
				path := g.reconstructPath(parent, from, to)
				span.SetAttributes(attribute.Int("distance", len(path)-1))
				return &ConnectionResult{
					Connected: true,
					Distance:  len(path) - 1,
					Path:      path,
				}, nil
			}
			queue = append(queue, next)
		}
	}

	span.SetAttributes(attribute.Bool("connected", false))
	return &ConnectionResult{Connected: false, Distance: -1}, nil
}

// reconstructPath walks the BFS parent map from to back to from and
// returns the path as usernames, source first.
func (g *Graph) reconstructPath(parent map[int64]int64, from, to int64) []string {
	ids := []int64{to}
	for cur := to; cur != from; {
		cur = parent[cur]
		ids = append(ids, cur)
	}

	path := make([]string, len(ids))
	for i, id := range ids {
		path[len(ids)-1-i] = g.usernames[id]
	}
	return path
}
