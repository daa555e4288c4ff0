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
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var pageRankTracer = otel.Tracer("social.graph.pagerank")

// PageRank configuration constants.
const (
	// DefaultDampingFactor is the probability of following an edge
	// (vs random jump). Standard value from the original PageRank
	// paper.
	DefaultDampingFactor = 0.85

	// DefaultMaxIterations is the maximum iterations before stopping.
	DefaultMaxIterations = 100

	// DefaultConvergence is the threshold for convergence detection.
	// Iteration stops when the L1 norm of the score change across all
	// users falls below this value.
	DefaultConvergence = 1e-6
)

// PageRankOptions configures the PageRank algorithm.
type PageRankOptions struct {
	// DampingFactor is the probability of following an edge (vs random
	// jump). Must be in [0, 1]. Default: 0.85
	DampingFactor float64

	// MaxIterations is the maximum iterations before stopping.
	// Must be > 0. Default: 100
	MaxIterations int

	// Convergence is the L1-norm threshold for convergence detection.
	// Must be > 0. Default: 1e-6
	Convergence float64
}

// Validate checks options and applies defaults for invalid values.
func (o *PageRankOptions) Validate() {
	if o.DampingFactor < 0 || o.DampingFactor > 1 {
		o.DampingFactor = DefaultDampingFactor
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Convergence <= 0 {
		o.Convergence = DefaultConvergence
	}
}

// DefaultPageRankOptions returns sensible defaults.
func DefaultPageRankOptions() *PageRankOptions {
	return &PageRankOptions{
		DampingFactor: DefaultDampingFactor,
		MaxIterations: DefaultMaxIterations,
		Convergence:   DefaultConvergence,
	}
}

// PageRankResult contains the output of PageRank computation.
type PageRankResult struct {
	// Scores maps username to influence score.
	// Scores sum to approximately 1.0 for a non-empty graph.
	Scores map[string]float64

	// Iterations is the actual number of iterations performed.
	Iterations int

	// Converged indicates whether the L1 delta fell below the
	// threshold before MaxIterations.
	Converged bool

	// Delta is the final L1 norm of the score change.
	Delta float64
}

// RankedUser pairs a username with its PageRank score for ordered
// presentation.
type RankedUser struct {
	Username string
	Score    float64
}

// PageRank computes influence scores for all users.
//
// Description:
//
//	Synchronous power iteration over the friendship graph. Every edge
//	is undirected, so a user's out-degree equals its friend count.
//	Each user's next score is (1-d)/N + d * sum(score(f)/degree(f))
//	over its friends f. Users with no friends are dangling nodes;
//	their score mass is redistributed uniformly across all N users on
//	every iteration rather than lost, which keeps the score vector
//	summing to 1.
//
//	The full next vector is computed from the current vector before
//	the swap, and iteration stops when the L1 norm of the change
//	falls below opts.Convergence or MaxIterations is reached.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - *PageRankResult: Scores for all users, iteration count,
//     convergence status. An empty graph yields an empty, converged
//     result rather than an error.
//
// Complexity: O(k * E) where k = iterations to converge.
func (g *Graph) PageRank(ctx context.Context, opts *PageRankOptions) *PageRankResult {
	ctx, span := pageRankTracer.Start(ctx, "Graph.PageRank",
		trace.WithAttributes(
			attribute.Int("user_count", g.UserCount()),
			attribute.Int("edge_count", g.EdgeCount()),
		),
	)
	defer span.End()

	n := float64(g.UserCount())
	if n == 0 {
		span.AddEvent("empty_graph")
		return &PageRankResult{
			Scores:    make(map[string]float64),
			Converged: true,
		}
	}

	if opts == nil {
		opts = DefaultPageRankOptions()
	} else {
		opts.Validate()
	}
	d := opts.DampingFactor

	ids := g.IDs()
	scores := make(map[int64]float64, len(ids))
	next := make(map[int64]float64, len(ids))

	// Uniform initialization.
	initial := 1.0 / n
	for _, id := range ids {
		scores[id] = initial
	}

	// Dangling users have no friends to pass score through.
	dangling := make([]int64, 0)
	for _, id := range ids {
		if len(g.adj[id]) == 0 {
			dangling = append(dangling, id)
		}
	}
	span.SetAttributes(attribute.Int("dangling_count", len(dangling)))

	var iterations int
	var converged bool
	var delta float64

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(
				attribute.Int("iterations_completed", iter),
			))
			return &PageRankResult{
				Scores:     g.scoresByUsername(scores),
				Iterations: iter,
				Delta:      delta,
			}
		}

		danglingMass := 0.0
		for _, id := range dangling {
			danglingMass += scores[id]
		}
		danglingMass = d * danglingMass / n

		delta = 0.0
		for _, id := range ids {
			score := (1-d)/n + danglingMass
			for friendID := range g.adj[id] {
				score += d * scores[friendID] / float64(len(g.adj[friendID]))
			}
			next[id] = score
			delta += math.Abs(score - scores[id])
		}

		scores, next = next, scores
		iterations = iter + 1

		if delta < opts.Convergence {
			converged = true
			break
		}
	}

	slog.Debug("PageRank completed",
		slog.Int("iterations", iterations),
		slog.Bool("converged", converged),
		slog.Float64("delta", delta),
		slog.Int("user_count", int(n)),
	)

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Bool("converged", converged),
		attribute.Float64("delta", delta),
	)

	return &PageRankResult{
		Scores:     g.scoresByUsername(scores),
		Iterations: iterations,
		Converged:  converged,
		Delta:      delta,
	}
}

// PageRankOf returns the influence score of a single user.
//
// The full vector is computed internally; the queried user's entry is
// returned. Fails with ErrUnknownUser if the user does not exist.
func (g *Graph) PageRankOf(ctx context.Context, username string, opts *PageRankOptions) (float64, error) {
	if !g.HasUser(username) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	result := g.PageRank(ctx, opts)
	return result.Scores[username], nil
}

// PageRankAll returns every user ranked by score.
//
// Sorted descending by score with ascending-username tie-break for
// determinism. k > 0 truncates to the top k; k <= 0 returns all.
func (g *Graph) PageRankAll(ctx context.Context, k int, opts *PageRankOptions) []RankedUser {
	result := g.PageRank(ctx, opts)

	ranked := make([]RankedUser, 0, len(result.Scores))
	for username, score := range result.Scores {
		ranked = append(ranked, RankedUser{Username: username, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Username < ranked[j].Username
	})

	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// scoresByUsername converts an id-keyed score vector to the
// username-keyed form exposed to callers.
func (g *Graph) scoresByUsername(scores map[int64]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for id, score := range scores {
		out[g.usernames[id]] = score
	}
	return out
}
