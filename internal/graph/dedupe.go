package graph

import "github.com/jonathan/coursemate/internal/types"

// rank orders statuses for merging: completed beats recommended, which beats
// not-completed.
func rank(s types.NodeStatus) int {
	switch s {
	case types.StatusCompleted:
		return 2
	case types.StatusRecommended:
		return 1
	default:
		return 0
	}
}

// Dedupe returns a copy of g with one node per course. A course seen with
// several statuses keeps the highest-ranked one; nodes stay in first-seen
// order. Edges are copied unchanged.
func Dedupe(g types.Graph) types.Graph {
	index := make(map[types.CourseCode]int, len(g.Nodes))
	nodes := make([]types.GraphNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if i, ok := index[n.Key]; ok {
			if rank(n.Status) > rank(nodes[i].Status) {
				nodes[i].Status = n.Status
			}
			continue
		}
		index[n.Key] = len(nodes)
		nodes = append(nodes, n)
	}

	edges := make([]types.PrerequisiteEdge, len(g.Edges))
	copy(edges, g.Edges)
	return types.Graph{Nodes: nodes, Edges: edges}
}

// DedupeEdges returns a copy of g keeping the first edge for each
// (from, to) pair. Surviving edges are renumbered from 0.
func DedupeEdges(g types.Graph) types.Graph {
	type pair struct{ from, to types.CourseCode }

	seen := make(map[pair]struct{}, len(g.Edges))
	edges := make([]types.PrerequisiteEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		p := pair{e.From, e.To}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		edges = append(edges, types.PrerequisiteEdge{Key: len(edges), From: e.From, To: e.To})
	}

	nodes := make([]types.GraphNode, len(g.Nodes))
	copy(nodes, g.Nodes)
	return types.Graph{Nodes: nodes, Edges: edges}
}
