package transform

import "github.com/matzehuels/foldgraph/pkg/digraph"

// VisibleGraph derives the hierarchy of vertices satisfying keep.
//
// Every kept vertex is copied, and kept vertices with an inner graph get an
// inner graph filtered the same way. The root is always kept. Edges of
// dropped vertices are rerouted rather than lost: for each kept vertex v,
// a breadth-first search over the in-neighbours of the source graph skips
// dropped vertices and stops at the nearest kept ancestors, and an edge
// from each such ancestor to v is created with edge. Several skip paths
// for one pair produce a single edge. Self loops are kept only if they
// exist in the source graph.
//
// When edge is nil, direct edges keep their metadata and rerouted edges are
// marked with [digraph.MetaSpliced].
func VisibleGraph(root *digraph.Vertex, keep func(*digraph.Vertex) bool, edge EdgeBuilder) (*digraph.Vertex, *Mapping) {
	newRoot := root.Copy()
	m := NewMapping(root, newRoot)
	m.Add(root.ID, newRoot.ID)
	if root.Inner() != nil {
		_ = newRoot.SetInner(filterLevel(root.Inner(), keep, edge, m))
	}
	return newRoot, m
}

func filterLevel(g *digraph.Graph, keep func(*digraph.Vertex) bool, edge EdgeBuilder, m *Mapping) *digraph.Graph {
	out := digraph.New(digraph.WithLogger(g.Logger()))
	kept := make(map[int]*digraph.Vertex)

	for _, v := range g.Vertices() {
		if !keep(v) {
			continue
		}
		c := v.Copy()
		if v.Inner() != nil {
			_ = c.SetInner(filterLevel(v.Inner(), keep, edge, m))
		}
		_ = out.AddVertex(c)
		kept[v.ID] = c
		m.Add(v.ID, c.ID)
	}

	for _, v := range g.Vertices() {
		dst, ok := kept[v.ID]
		if !ok {
			continue
		}
		if e, ok := g.Edge(v.ID, v.ID); ok {
			_ = out.AddEdge(buildEdge(edge, dst, dst, e.Meta))
		}

		found := map[int]bool{v.ID: true}
		queue := g.InEdges(v.ID)
		direct := len(queue)
		for i := 0; i < len(queue); i++ {
			w := queue[i].From
			if found[w] {
				continue
			}
			found[w] = true
			if src, ok := kept[w]; ok {
				meta := queue[i].Meta
				if i >= direct {
					meta = digraph.Metadata{digraph.MetaSpliced: true}
				}
				_ = out.AddEdge(buildEdge(edge, src, dst, meta))
				continue
			}
			queue = append(queue, g.InEdges(w)...)
		}
	}
	return out
}

// DropPassThrough removes vertices with exactly one in-neighbour and one
// out-neighbour (self loops ignored) from every level, rerouting their
// edges. It compresses long call chains. Vertices on a cycle of two or
// more vertices are kept, so every cycle stays visible.
func DropPassThrough(root *digraph.Vertex, edge EdgeBuilder) (*digraph.Vertex, *Mapping) {
	cyclic := make(map[*digraph.Vertex]bool)
	digraph.Walk(root, func(v *digraph.Vertex, _ int) bool {
		g := v.Inner()
		if g == nil {
			return true
		}
		for _, comp := range StronglyConnectedComponents(g) {
			if len(comp) < 2 {
				continue
			}
			for _, id := range comp {
				cyclic[g.Vertex(id)] = true
			}
		}
		return true
	})
	return VisibleGraph(root, func(v *digraph.Vertex) bool { return cyclic[v] || !PassThrough(v) }, edge)
}

// PassThrough reports whether v has exactly one in-neighbour and one
// out-neighbour other than itself in its containing graph.
func PassThrough(v *digraph.Vertex) bool {
	g := v.Outer()
	if g == nil {
		return false
	}
	in, out := g.InDegree(v.ID), g.OutDegree(v.ID)
	if g.HasSelfLoop(v.ID) {
		in--
		out--
	}
	return in == 1 && out == 1
}
