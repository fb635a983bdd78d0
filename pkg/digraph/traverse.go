package digraph

import (
	"maps"
	"slices"

	"github.com/matzehuels/foldgraph/pkg/errors"
)

// isSource reports whether id has no incoming edges other than a self loop.
func (g *Graph) isSource(id int) bool {
	row := g.in[id]
	if len(row) == 0 {
		return true
	}
	_, self := row[id]
	return len(row) == 1 && self
}

// Sources returns the vertices with no incoming edges from other vertices,
// ordered by id. A vertex whose only in-neighbour is itself counts as a
// source.
//
// If the graph is non-empty but has no such vertex (for example a single
// cycle), the lowest-id vertex is returned alone so that traversals always
// have a starting point, and [ErrNoSource] is recorded as a warning.
func (g *Graph) Sources() []*Vertex {
	var out []*Vertex
	for _, v := range g.Vertices() {
		if g.isSource(v.ID) {
			out = append(out, v)
		}
	}
	if len(out) == 0 && len(g.vertices) > 0 {
		first := g.Vertices()[0]
		g.warn(errors.Wrap(errors.ErrCodeNoSource, ErrNoSource, "using vertex %d as source", first.ID))
		out = append(out, first)
	}
	return out
}

// VerticesToPrune returns the maximal set of vertices satisfying pred whose
// out-neighbours are all pruned as well, ordered by id. It removes tails of
// a chosen type that have no live descendants.
//
// The search is a depth-first post-order walk from [Graph.Sources];
// vertices unreachable from a source are never pruned. A vertex on a cycle
// is not pruned, since its successor on the cycle is still undecided when it
// finishes.
func (g *Graph) VerticesToPrune(pred func(*Vertex) bool) []*Vertex {
	pruned := make(map[int]bool)
	searched := make(map[int]bool)

	type frame struct {
		id   int
		next []int
	}

	for _, src := range g.Sources() {
		if searched[src.ID] {
			continue
		}
		searched[src.ID] = true
		stack := []*frame{{id: src.ID, next: slices.Sorted(maps.Keys(g.out[src.ID]))}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if len(top.next) > 0 {
				w := top.next[0]
				top.next = top.next[1:]
				if !searched[w] {
					searched[w] = true
					stack = append(stack, &frame{id: w, next: slices.Sorted(maps.Keys(g.out[w]))})
				}
				continue
			}

			stack = stack[:len(stack)-1]
			if !pred(g.vertices[top.id]) {
				continue
			}
			all := true
			for w := range g.out[top.id] {
				if !pruned[w] {
					all = false
					break
				}
			}
			if all {
				pruned[top.id] = true
			}
		}
	}

	out := make([]*Vertex, 0, len(pruned))
	for _, id := range slices.Sorted(maps.Keys(pruned)) {
		out = append(out, g.vertices[id])
	}
	return out
}

// Descendants returns the vertices reachable from id by following outgoing
// edges, excluding id itself unless it lies on a cycle. Ordered by id.
func (g *Graph) Descendants(id int) []*Vertex { return g.reach(id, g.out) }

// Ancestors returns the vertices that can reach id, excluding id itself
// unless it lies on a cycle. Ordered by id.
func (g *Graph) Ancestors(id int) []*Vertex { return g.reach(id, g.in) }

func (g *Graph) reach(id int, adj map[int]map[int]Edge) []*Vertex {
	seen := make(map[int]bool)
	queue := slices.Sorted(maps.Keys(adj[id]))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for next := range adj[cur] {
			if !seen[next] {
				queue = append(queue, next)
			}
		}
	}
	out := make([]*Vertex, 0, len(seen))
	for _, v := range slices.Sorted(maps.Keys(seen)) {
		out = append(out, g.vertices[v])
	}
	return out
}

// Unrelated returns the ids of vertices that are neither selected nor an
// ancestor or descendant of any selected vertex, ordered by id. Unknown
// selection ids are ignored. An empty selection yields no vertices.
func (g *Graph) Unrelated(selection []int) []int {
	related := make(map[int]bool)
	for _, id := range selection {
		if !g.Has(id) {
			continue
		}
		related[id] = true
		for _, v := range g.Ancestors(id) {
			related[v.ID] = true
		}
		for _, v := range g.Descendants(id) {
			related[v.ID] = true
		}
	}
	if len(related) == 0 {
		return nil
	}
	var out []int
	for _, id := range g.IDs() {
		if !related[id] {
			out = append(out, id)
		}
	}
	return out
}
