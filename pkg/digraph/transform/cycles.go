package transform

import "github.com/matzehuels/foldgraph/pkg/digraph"

// MetaBack marks edges removed by [BreakCycles] when they are recorded on
// a vertex for display.
const MetaBack = "back"

// BreakCycles removes the back edges found by a depth-first search of g,
// leaving it acyclic, and returns them ordered as found.
//
// The search starts from the source vertices and then from any vertex
// still unvisited, in ascending id order. Self loops are back edges.
// Callers that need the cyclic structure should run it on a copy; the
// inner graph of a component vertex is always cyclic, so laying one out
// requires breaking its cycles first.
func BreakCycles(g *digraph.Graph) []digraph.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int]int, g.Len())
	var backEdges []digraph.Edge

	var dfs func(id int)
	dfs = func(id int) {
		color[id] = gray
		for _, e := range g.OutEdges(id) {
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				backEdges = append(backEdges, e)
			}
		}
		color[id] = black
	}

	ids := g.IDs()
	for _, id := range ids {
		in := g.InDegree(id)
		if g.HasSelfLoop(id) {
			in--
		}
		if in == 0 && color[id] == white {
			dfs(id)
		}
	}
	for _, id := range ids {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e.From, e.To)
	}
	return backEdges
}
