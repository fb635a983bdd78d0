// Package digraph provides the directed graph and hierarchical graph used by
// the foldgraph layout engine.
//
// # Overview
//
// Program-analysis graphs (call graphs, loop nesting forests, dependency
// graphs) are large and often cyclic. foldgraph draws them as nested boxes:
// a vertex may own an inner graph, and an expanded vertex is drawn as a box
// containing the layout of that inner graph. This package provides the
// data structures; algorithms live in the [transform] and [layout]
// packages.
//
// # Graphs and Vertices
//
// A [Graph] holds integer-identified [Vertex] values with out- and
// in-adjacency indices. Create one with [New], add vertices with
// [Graph.AddVertex] and edges with [Graph.AddEdge]:
//
//	g := digraph.New()
//	_ = g.AddVertex(digraph.NewVertex(1, "main", digraph.KindMethod))
//	_ = g.AddVertex(digraph.NewVertex(2, "parse", digraph.KindMethod))
//	_ = g.Connect(1, 2)
//
// At most one edge exists per ordered pair. Malformed input is non-fatal:
// edges to absent vertices and duplicate vertices are dropped, logged, and
// recorded in [Graph.Warnings].
//
// Every vertex has a [Kind] tag. Analysis vertices are [KindPlain],
// [KindMethod] or [KindLoop]; the engine creates [KindComponent],
// [KindRoot] and [KindGroup] vertices. A vertex's inner graph is owned by
// exactly one vertex; see [Vertex.SetInner]. [Vertex.Copy] produces a fresh
// vertex with the same identity and no structure, while [Upgrade] also
// deep-copies the inner graph.
//
// # Hierarchical Graphs
//
// [Hierarchical] wraps an immutable graph under a synthetic root and keeps a
// mutable "visible" overlay. [Hierarchical.Hide] removes a vertex from the
// overlay and connects its visible predecessors directly to its visible
// successors, so paths through hidden vertices stay visible:
//
//	h := digraph.Build(vertices, edges)
//	_ = h.Hide(2)           // A→B→C becomes A→C
//	_ = h.Unhide(2)         // back to A→B→C
//	h.UnhideAll()
//
// # Traversal
//
// [Graph.Sources] returns the vertices with no incoming edges from other
// vertices. [Graph.VerticesToPrune] finds the tails of a chosen vertex type
// that have no live descendants. [Walk] and [Index] visit a whole
// hierarchy, and [IDSource] allocates ids for synthetic vertices that never
// collide with existing ones.
//
// # Concurrency
//
// Graph and Hierarchical are not safe for concurrent use. Distinct graphs
// share no mutable state, so separate hierarchies may be processed in
// parallel.
//
// [transform]: github.com/matzehuels/foldgraph/pkg/digraph/transform
// [layout]: github.com/matzehuels/foldgraph/pkg/layout
package digraph
