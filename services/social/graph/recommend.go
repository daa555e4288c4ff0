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
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var recommendTracer = otel.Tracer("social.graph.recommend")

// DefaultRecommendLimit is the number of recommendations returned when
// the caller does not override it.
const DefaultRecommendLimit = 10

// Recommendation is a friend-of-friend candidate with its score.
type Recommendation struct {
	// Username of the candidate.
	Username string

	// MutualCount is the number of friends shared with the queried
	// user. Always >= 1: a candidate unreachable in two hops is never
	// produced.
	MutualCount int
}

// Recommend generates friend suggestions for a user.
//
// Description:
//
//	Candidates are all users exactly two hops away: friends of the
//	user's friends, excluding the user itself and anyone already a
//	direct friend. Each candidate is scored by the number of mutual
//	friends with the queried user, which for a two-hop candidate
//	equals the number of distinct paths that reached it.
//
//	Results are sorted descending by score with ascending-username
//	tie-break, then truncated to limit (<= 0 means
//	DefaultRecommendLimit).
//
// Inputs:
//
//	ctx - Context for tracing
//	username - User to recommend friends for
//	limit - Maximum number of recommendations
//
// Outputs:
//
//	[]Recommendation - Possibly empty, never nil on success
//	error - ErrUnknownUser if the user is absent
func (g *Graph) Recommend(ctx context.Context, username string, limit int) ([]Recommendation, error) {
	_, span := recommendTracer.Start(ctx, "Graph.Recommend",
		trace.WithAttributes(attribute.Int("limit", limit)),
	)
	defer span.End()

	id, ok := g.ids[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}

	direct := g.adj[id]
	counts := make(map[int64]int)
	for friendID := range direct {
		for candidateID := range g.adj[friendID] {
			if candidateID == id {
				continue
			}
			if _, isFriend := direct[candidateID]; isFriend {
				continue
			}
			counts[candidateID]++
		}
	}

	recs := make([]Recommendation, 0, len(counts))
	for candidateID, count := range counts {
		recs = append(recs, Recommendation{
			Username:    g.usernames[candidateID],
			MutualCount: count,
		})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].MutualCount != recs[j].MutualCount {
			return recs[i].MutualCount > recs[j].MutualCount
		}
		return recs[i].Username < recs[j].Username
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}

	span.SetAttributes(
		attribute.Int("candidates", len(counts)),
		attribute.Int("returned", len(recs)),
	)
	return recs, nil
}
