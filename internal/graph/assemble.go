// Package graph assembles the prerequisite diagram data for a submission.
package graph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/coursemate/internal/prereq"
	"github.com/jonathan/coursemate/internal/types"
)

type options struct {
	concurrency int
}

// Option configures Assemble.
type Option func(*options)

// WithConcurrency lets up to k lookups run at once. Lookups are prefetched
// and the graph is then built in the same order as a sequential run, so the
// result does not depend on k. Values below 2 keep lookups sequential.
func WithConcurrency(k int) Option {
	return func(o *options) {
		o.concurrency = k
	}
}

// entry is one course to expand, with the status its nodes get.
type entry struct {
	course types.CourseCode
	status types.NodeStatus
}

// Assemble builds the raw node and edge lists: outstanding courses first, in
// category order, then completed courses in input order. Each course yields
// a node for itself, and a node plus an edge for every prerequisite the
// lookup returns. Nothing is deduplicated; see Dedupe.
func Assemble(ctx context.Context, outstanding types.OutstandingRequirements, completed types.CompletedCourses, lookup prereq.Lookuper, opts ...Option) types.Graph {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	entries := plan(outstanding, completed)

	var results []prereq.Result
	if o.concurrency > 1 {
		results = prefetch(ctx, entries, lookup, o.concurrency)
	}

	g := types.Graph{
		Nodes: []types.GraphNode{},
		Edges: []types.PrerequisiteEdge{},
	}
	nextKey := 0
	for i, e := range entries {
		var result prereq.Result
		if results != nil {
			result = results[i]
		} else {
			result = lookup.Lookup(ctx, e.course)
		}

		g.Nodes = append(g.Nodes, types.GraphNode{Key: e.course, Status: e.status})
		for _, p := range result.Courses {
			if p.IsZero() {
				continue
			}
			g.Nodes = append(g.Nodes, types.GraphNode{Key: p, Status: e.status})
			g.Edges = append(g.Edges, types.PrerequisiteEdge{Key: nextKey, From: p, To: e.course})
			nextKey++
		}
	}
	return g
}

// plan lists the courses to expand in assembly order, skipping empty codes.
func plan(outstanding types.OutstandingRequirements, completed types.CompletedCourses) []entry {
	var entries []entry
	for _, c := range outstanding.Flatten() {
		if !c.IsZero() {
			entries = append(entries, entry{course: c, status: types.StatusNotCompleted})
		}
	}
	for _, c := range completed.Codes() {
		if !c.IsZero() {
			entries = append(entries, entry{course: c, status: types.StatusCompleted})
		}
	}
	return entries
}

// prefetch runs every lookup through a bounded worker pool. Lookups swallow
// their own failures, so no goroutine returns an error.
func prefetch(ctx context.Context, entries []entry, lookup prereq.Lookuper, limit int) []prereq.Result {
	results := make([]prereq.Result, len(entries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range entries {
		g.Go(func() error {
			results[i] = lookup.Lookup(gCtx, e.course)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
